// Package contact captures leads from the site's contact forms.
package contact

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"realtysite/internal/domain"
	"realtysite/internal/modules/listing"
	"realtysite/internal/remote"
)

const GeneralSource = "Contato pelo site"

// PropertySource labels an enquiry about a specific listing.
func PropertySource(title string) string {
	return "Interesse: " + title
}

type Service struct {
	tables   remote.Tables
	listings *listing.Store
	notifier Notifier
}

// NewService accepts a nil notifier; leads are then only stored.
func NewService(tables remote.Tables, listings *listing.Store, notifier Notifier) *Service {
	return &Service{tables: tables, listings: listings, notifier: notifier}
}

// SubmitGeneral records a message from the contact page.
func (s *Service) SubmitGeneral(ctx context.Context, req *Request) (*Receipt, error) {
	msg := req.message(GeneralSource, "")
	return s.Submit(ctx, msg, GeneralSource)
}

// SubmitForProperty records an enquiry about propertyID.
func (s *Service) SubmitForProperty(ctx context.Context, propertyID string, req *Request) (*Receipt, error) {
	p, ok := s.listings.Get(propertyID)
	if !ok {
		return nil, ErrPropertyNotFound
	}
	source := PropertySource(p.Title)
	return s.Submit(ctx, req.message(source, p.ID), source)
}

// Submit writes msg to the contacts table and forwards it to the relay. It
// succeeds when at least one of the two took the message.
func (s *Service) Submit(ctx context.Context, msg domain.ContactMessage, subject string) (*Receipt, error) {
	var receipt Receipt

	storeErr := s.tables.Insert(ctx, remote.TableContacts, msg.ToRow())
	if storeErr != nil {
		glog.Errorf("contact insert failed source=%q: %v", msg.Source, storeErr)
	} else {
		receipt.Stored = true
	}

	var relayErr error
	if s.notifier != nil {
		relayErr = s.notifier.Notify(ctx, RelayForm{
			Name:    msg.Name,
			Email:   msg.Email,
			Phone:   msg.Phone,
			Message: msg.Message,
			Subject: subject,
		})
		if relayErr != nil {
			glog.Warningf("contact relay failed source=%q: %v", msg.Source, relayErr)
		} else {
			receipt.Notified = true
		}
	} else {
		relayErr = errors.New("relay disabled")
	}

	if !receipt.Stored && !receipt.Notified {
		return nil, fmt.Errorf("%w: %w", ErrDeliveryFailed, errors.Join(storeErr, relayErr))
	}
	glog.V(1).Infof("contact accepted source=%q stored=%t notified=%t", msg.Source, receipt.Stored, receipt.Notified)
	return &receipt, nil
}
