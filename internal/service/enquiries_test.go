package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propsnap/propsnap/internal/apperr"
	"github.com/propsnap/propsnap/internal/events"
	"github.com/propsnap/propsnap/internal/service"
	"github.com/propsnap/propsnap/internal/testutil"
)

func TestEnquiryReplyIsOwnerOnly(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	asker := testutil.CreateUser(t, env.db, "asker")
	city := testutil.CreateCity(t, env.db, "Mumbai", "Maharashtra")
	p := testutil.CreateProperty(t, env.db, owner, city, "1 Marine Drive")

	e, err := env.svc.Enquiries.Create(ctx, asker.ID, service.EnquiryInput{PropertyID: p.ID, Message: "Is parking included?"})
	require.NoError(t, err)
	assert.Empty(t, e.Replies)

	reply, err := env.svc.Enquiries.Reply(ctx, owner.ID, service.ReplyInput{EnquiryID: e.ID, Message: "Yes, one covered spot."})
	require.NoError(t, err)
	assert.Equal(t, e.ID, reply.EnquiryID)

	_, err = env.svc.Enquiries.Reply(ctx, asker.ID, service.ReplyInput{EnquiryID: e.ID, Message: "Thanks"})
	assertKind(t, apperr.KindForbidden, err)

	_, err = env.svc.Enquiries.Reply(ctx, owner.ID, service.ReplyInput{EnquiryID: "9a7e2b4c-1d3f-4a5b-8c6d-7e8f9a0b1c2d", Message: "Hello"})
	assertKind(t, apperr.KindNotFound, err)

	assert.Equal(t, []string{events.EnquiryRaised, events.EnquiryReplied}, env.events.Keys())
}

func TestEnquiryValidationAndTotals(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, env.db, "owner")
	asker := testutil.CreateUser(t, env.db, "asker")
	city := testutil.CreateCity(t, env.db, "Mumbai", "Maharashtra")
	p := testutil.CreateProperty(t, env.db, owner, city, "1 Marine Drive")

	_, err := env.svc.Enquiries.Create(ctx, asker.ID, service.EnquiryInput{PropertyID: p.ID, Message: "Hi"})
	assertKind(t, apperr.KindValidation, err)
	_, err = env.svc.Enquiries.Create(ctx, asker.ID, service.EnquiryInput{PropertyID: "f4b0d7a2-5c1e-4e3a-9d8b-2a6c4e8f0b13", Message: "Is parking included?"})
	assertKind(t, apperr.KindNotFound, err)

	first, err := env.svc.Enquiries.Create(ctx, asker.ID, service.EnquiryInput{PropertyID: p.ID, Message: "Is parking included?"})
	require.NoError(t, err)
	_, err = env.svc.Enquiries.Create(ctx, asker.ID, service.EnquiryInput{PropertyID: p.ID, Message: "Are pets allowed?"})
	require.NoError(t, err)
	for _, msg := range []string{"Yes", "One spot"} {
		_, err = env.svc.Enquiries.Reply(ctx, owner.ID, service.ReplyInput{EnquiryID: first.ID, Message: msg})
		require.NoError(t, err)
	}

	thread, err := env.svc.Enquiries.List(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, service.EnquiryTotals{MainEnquiries: 2, Replies: 2, Total: 4}, thread.Totals)
	require.Len(t, thread.Enquiries, 2)
	for _, e := range thread.Enquiries {
		require.NotNil(t, e.User)
		assert.Equal(t, "asker", e.User.Name)
		if e.ID == first.ID {
			require.Len(t, e.Replies, 2)
			assert.Equal(t, "Yes", e.Replies[0].Message)
			assert.Equal(t, "One spot", e.Replies[1].Message)
		}
	}

	_, err = env.svc.Enquiries.List(ctx, "nope")
	assertKind(t, apperr.KindValidation, err)
	_, err = env.svc.Enquiries.List(ctx, "f4b0d7a2-5c1e-4e3a-9d8b-2a6c4e8f0b13")
	assertKind(t, apperr.KindNotFound, err)
}
