package certs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/event-soft/eventsoft-backend/internal/audit"
	"github.com/event-soft/eventsoft-backend/internal/notify"
	"github.com/event-soft/eventsoft-backend/internal/storage"
)

// Outcome is the per-subject result of a bulk emission. Delivered and
// Error are mutually exclusive; Status is one of "Delivered",
// "DeliveryFailed" or "Skipped".
type Outcome struct {
	SubjectID     int64  `json:"subject_id"`
	CertificateID string `json:"certificate_id"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
}

const (
	StatusDelivered      = "Delivered"
	StatusDeliveryFailed = "DeliveryFailed"
	StatusSkipped        = "Skipped"
)

// EmitResult reports one bulk emission. ConfirmationRequired is set,
// and Outcomes empty, when the caller did not confirm; nothing is
// delivered in that case.
type EmitResult struct {
	ConfirmationRequired bool      `json:"confirmation_required,omitempty"`
	Outcomes             []Outcome `json:"outcomes,omitempty"`
}

type Service struct {
	events    EventGetter
	manifests *Manifests
	renderer  notify.Renderer
	mailer    notify.Mailer
	archive   *storage.Archive
	log       *audit.Log
}

func NewService(events EventGetter, manifests *Manifests, renderer notify.Renderer, mailer notify.Mailer, archive *storage.Archive, auditLog *audit.Log) *Service {
	return &Service{events: events, manifests: manifests, renderer: renderer, mailer: mailer, archive: archive, log: auditLog}
}

// Emit renders, archives and mails one certificate per manifest entry.
// The confirmed flag is a safety interlock: without it the call reports
// ConfirmationRequired and performs no delivery. A non-nil subjects
// slice restricts P and E emissions to those ids. A failed delivery for
// one subject never aborts the batch.
func (s *Service) Emit(ctx context.Context, eventID int64, kind Kind, tuples []AwardTuple, subjects []int64, confirmed bool) (EmitResult, error) {
	entries, err := s.manifests.Build(ctx, eventID, kind, tuples, subjects)
	if err != nil {
		return EmitResult{}, err
	}
	if !confirmed {
		return EmitResult{ConfirmationRequired: true}, nil
	}
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return EmitResult{}, err
	}

	outcomes := make([]Outcome, 0, len(entries))
	for _, entry := range entries {
		outcome := Outcome{SubjectID: entry.SubjectID, CertificateID: entry.CertificateID}

		artifact, filename, err := s.renderer.Render(notify.Certificate{
			CertificateID: entry.CertificateID,
			EventName:     ev.Name,
			SubjectName:   entry.DisplayName,
			Kind:          string(kind),
			Payload:       entry.DynamicPayload,
		})
		if err != nil {
			outcome.Status = StatusDeliveryFailed
			outcome.Error = err.Error()
			outcomes = append(outcomes, outcome)
			continue
		}
		if s.archive != nil {
			if _, err := s.archive.Put(filename, bytes.NewReader(artifact)); err != nil {
				log.Printf("certs: archive %s: %v", entry.CertificateID, err)
			}
		}
		if entry.Email == "" {
			outcome.Status = StatusSkipped
			outcome.Error = "no email on file"
			outcomes = append(outcomes, outcome)
			continue
		}
		err = s.mailer.Send(ctx, notify.Message{
			To:             entry.Email,
			Subject:        "Certificado " + entry.CertificateID + " - " + ev.Name,
			Body:           "Adjuntamos su certificado del evento " + ev.Name + ".",
			Attachment:     artifact,
			AttachmentName: filename,
		})
		if err != nil {
			outcome.Status = StatusDeliveryFailed
			outcome.Error = err.Error()
		} else {
			outcome.Status = StatusDelivered
		}
		outcomes = append(outcomes, outcome)
	}

	s.auditEmission(ctx, eventID, kind, outcomes)
	return EmitResult{Outcomes: outcomes}, nil
}

func (s *Service) auditEmission(ctx context.Context, eventID int64, kind Kind, outcomes []Outcome) {
	if s.log == nil {
		return
	}
	data, _ := json.Marshal(map[string]any{"kind": kind, "outcomes": outcomes})
	_ = s.log.Append(ctx, audit.Entry{
		Type:     "CertificatesEmitted",
		Key:      fmt.Sprintf("event:%d:%s", eventID, kind),
		DataJSON: string(data),
	})
}
