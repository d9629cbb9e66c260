package api

import (
	"bytes"
	"errors"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/service"
)

const multipartMemory = 8 << 20

// listingForm is a parsed multipart listing request. Close releases the
// opened files and the form's temporary storage.
type listingForm struct {
	form    *multipart.Form
	files   []multipart.File
	uploads []service.Upload
}

func (f *listingForm) Close() {
	for _, file := range f.files {
		_ = file.Close()
	}
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

// value returns the first form value among names.
func (f *listingForm) value(names ...string) (string, bool) {
	for _, name := range names {
		if vs, ok := f.form.Value[name]; ok && len(vs) > 0 {
			return strings.TrimSpace(vs[0]), true
		}
	}
	return "", false
}

// parseListingForm reads the multipart body, opening up to maxImages files
// from the "images" field.
func parseListingForm(w http.ResponseWriter, r *http.Request, maxImages int, maxBytes int64) (*listingForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("request body is too large", nil)
		}
		return nil, apperr.Validation("expected a multipart/form-data body", nil)
	}

	lf := &listingForm{form: r.MultipartForm}
	headers := r.MultipartForm.File["images"]
	if len(headers) > maxImages {
		lf.Close()
		return nil, apperr.FieldError("images", "at most "+strconv.Itoa(maxImages)+" images are allowed")
	}

	descriptions, err := imageDescriptions(lf.form.Value["imageDescriptions"])
	if err != nil {
		lf.Close()
		return nil, err
	}

	for i, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			lf.Close()
			return nil, apperr.FieldError("images", "could not read "+fh.Filename)
		}
		lf.files = append(lf.files, file)

		var desc string
		if i < len(descriptions) {
			desc = descriptions[i]
		}
		lf.uploads = append(lf.uploads, service.Upload{Filename: fh.Filename, Content: file, Description: desc})
	}
	return lf, nil
}

// imageDescriptions accepts a JSON array, a comma separated string or
// repeated fields.
func imageDescriptions(values []string) ([]string, error) {
	switch {
	case len(values) == 0:
		return nil, nil
	case len(values) > 1:
		return values, nil
	}
	raw := strings.TrimSpace(values[0])
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, apperr.FieldError("imageDescriptions", "must be a JSON array of strings")
		}
		return out, nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func decodeStrict(raw, field string, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.FieldError(field, "invalid JSON: "+err.Error())
	}
	return nil
}

// formParser collects per-field conversion errors from individual form values.
type formParser struct {
	f      *listingForm
	fields map[string]string
}

func (p *formParser) strValue(names ...string) *string {
	v, ok := p.f.value(names...)
	if !ok {
		return nil
	}
	return &v
}

func (p *formParser) floatValue(name string) *float64 {
	v, ok := p.f.value(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		p.fields[name] = "must be a finite number"
		return nil
	}
	return &n
}

func (p *formParser) intValue(name string) *int {
	v, ok := p.f.value(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fields[name] = "must be an integer"
		return nil
	}
	return &n
}

func (p *formParser) boolValue(name string) *bool {
	v, ok := p.f.value(name)
	if !ok || v == "" {
		return nil
	}
	b := v == "true"
	return &b
}

func (p *formParser) err() error {
	if len(p.fields) > 0 {
		return apperr.Validation("invalid form fields", p.fields)
	}
	return nil
}

// patch reads the listing either from the propertyData JSON field or from
// individual form fields.
func (f *listingForm) patch() (service.PropertyPatch, string, error) {
	if raw, ok := f.value("propertyData"); ok && raw != "" {
		var body struct {
			service.PropertyPatch
			ID        string `json:"id"`
			CreatorID string `json:"creatorId"`
		}
		if err := decodeStrict(raw, "propertyData", &body); err != nil {
			return service.PropertyPatch{}, "", err
		}
		return body.PropertyPatch, body.ID, nil
	}

	p := &formParser{f: f, fields: make(map[string]string)}
	patch := service.PropertyPatch{
		Title:       p.strValue("title"),
		Description: p.strValue("description"),
		Price:       p.floatValue("price"),
		Type:        p.strValue("type"),
		ListingType: p.strValue("listingType", "ListingType"),
		BHK:         p.intValue("bhk"),
		Sqft:        p.floatValue("sqft"),
		Furnished:   p.boolValue("furnished"),
		Available:   p.boolValue("available"),
		City:        p.strValue("city"),
		State:       p.strValue("state"),
		Country:     p.strValue("country"),
		Address:     p.strValue("address"),
		Latitude:    p.floatValue("latitude"),
		Longitude:   p.floatValue("longitude"),
	}
	id, _ := f.value("id")
	return patch, id, p.err()
}

// input reads a complete new listing.
func (f *listingForm) input() (service.PropertyInput, error) {
	if raw, ok := f.value("propertyData"); ok && raw != "" {
		var in service.PropertyInput
		if err := decodeStrict(raw, "propertyData", &in); err != nil {
			return in, err
		}
		return in, nil
	}

	patch, _, err := f.patch()
	if err != nil {
		return service.PropertyInput{}, err
	}
	in := service.PropertyInput{Available: patch.Available}
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&in.Title, patch.Title)
	assign(&in.Description, patch.Description)
	assign(&in.Type, patch.Type)
	assign(&in.ListingType, patch.ListingType)
	assign(&in.City, patch.City)
	assign(&in.State, patch.State)
	assign(&in.Country, patch.Country)
	assign(&in.Address, patch.Address)
	if patch.Price != nil {
		in.Price = *patch.Price
	}
	if patch.BHK != nil {
		in.BHK = *patch.BHK
	}
	if patch.Sqft != nil {
		in.Sqft = *patch.Sqft
	}
	if patch.Furnished != nil {
		in.Furnished = *patch.Furnished
	}
	if patch.Latitude != nil {
		in.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		in.Longitude = *patch.Longitude
	}
	return in, nil
}

// imageUpdate reads existingImages, a JSON array of image ids or of
// {id, description} objects. An absent field keeps every image.
func (f *listingForm) imageUpdate() (service.ImageUpdate, error) {
	update := service.ImageUpdate{New: f.uploads}

	raw, ok := f.value("existingImages")
	if !ok {
		return update, nil
	}
	update.Keep = []string{}
	if raw == "" {
		return update, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err == nil {
		update.Keep = append(update.Keep, ids...)
		return update, nil
	}

	var images []struct {
		ID          string  `json:"id"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return update, apperr.FieldError("existingImages", "must be a JSON array of image ids or objects")
	}
	update.Descriptions = make(map[string]string)
	for _, img := range images {
		if img.ID == "" {
			continue
		}
		update.Keep = append(update.Keep, img.ID)
		if img.Description != nil {
			update.Descriptions[img.ID] = *img.Description
		}
	}
	return update, nil
}
