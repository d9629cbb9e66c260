package models

// ModelTypeRegistry lists every persisted model by name.
var ModelTypeRegistry = map[string]interface{}{
	"City":          City{},
	"Conversation":  Conversation{},
	"Enquiry":       Enquiry{},
	"EnquiryReply":  EnquiryReply{},
	"Favourite":     Favourite{},
	"Message":       Message{},
	"Property":      Property{},
	"PropertyImage": PropertyImage{},
	"User":          User{},
}

// Registry implements migration.ModelRegistry over ModelTypeRegistry.
type Registry struct{}

func (Registry) GetModels() map[string]interface{} {
	return ModelTypeRegistry
}
