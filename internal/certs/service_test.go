package certs

import (
	"context"
	"errors"
	"testing"

	"github.com/event-soft/eventsoft-backend/internal/event"
	"github.com/event-soft/eventsoft-backend/internal/notify"
)

type fakeMailer struct {
	sent    []notify.Message
	failFor map[string]bool
}

func (f *fakeMailer) Send(_ context.Context, m notify.Message) error {
	if f.failFor[m.To] {
		return errors.New("smtp: connection refused")
	}
	f.sent = append(f.sent, m)
	return nil
}

func emissionFixture() (*Service, *fakeMailer) {
	m := manifestFixture(event.StateFinalized)
	mailer := &fakeMailer{failFor: map[string]bool{}}
	svc := NewService(m.events, m, notify.TextRenderer{}, mailer, nil, nil)
	return svc, mailer
}

func TestEmitRequiresConfirmation(t *testing.T) {
	svc, mailer := emissionFixture()

	res, err := svc.Emit(context.Background(), 1, KindParticipation, nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if !res.ConfirmationRequired {
		t.Fatal("unconfirmed emission must report ConfirmationRequired")
	}
	if len(res.Outcomes) != 0 || len(mailer.sent) != 0 {
		t.Fatal("unconfirmed emission must deliver nothing")
	}
}

func TestEmitDeliversPerSubject(t *testing.T) {
	svc, mailer := emissionFixture()

	res, err := svc.Emit(context.Background(), 1, KindParticipation, nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.ConfirmationRequired {
		t.Fatal("confirmed emission flagged as unconfirmed")
	}
	if len(res.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(res.Outcomes))
	}
	for _, o := range res.Outcomes {
		if o.Status != StatusDelivered {
			t.Fatalf("outcome %+v, want Delivered", o)
		}
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("mails sent = %d, want 2", len(mailer.sent))
	}
	if mailer.sent[0].AttachmentName != res.Outcomes[0].CertificateID+".txt" {
		t.Fatalf("attachment %q does not match certificate %q",
			mailer.sent[0].AttachmentName, res.Outcomes[0].CertificateID)
	}
}

func TestEmitFailureDoesNotAbortBatch(t *testing.T) {
	svc, mailer := emissionFixture()
	mailer.failFor["ana@example.com"] = true

	res, err := svc.Emit(context.Background(), 1, KindParticipation, nil, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	var failed, delivered int
	for _, o := range res.Outcomes {
		switch o.Status {
		case StatusDeliveryFailed:
			failed++
			if o.Error == "" {
				t.Fatal("failed outcome missing error detail")
			}
		case StatusDelivered:
			delivered++
		}
	}
	if failed != 1 || delivered != 1 {
		t.Fatalf("failed=%d delivered=%d, want 1/1", failed, delivered)
	}
}

func TestEmitHonorsSubjectFilter(t *testing.T) {
	svc, mailer := emissionFixture()

	res, err := svc.Emit(context.Background(), 1, KindParticipation, nil, []int64{12}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Outcomes) != 1 || res.Outcomes[0].CertificateID != "CERT-P-1-0012" {
		t.Fatalf("outcomes = %+v, want only CERT-P-1-0012", res.Outcomes)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("mails sent = %d, want 1", len(mailer.sent))
	}
}

func TestEmitAwardsCarriesIDsThrough(t *testing.T) {
	svc, _ := emissionFixture()
	tuples := []AwardTuple{{ParticipantID: 10, Position: 1, Label: "Primer Lugar"}}

	res, err := svc.Emit(context.Background(), 1, KindAward, tuples, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Outcomes) != 1 || res.Outcomes[0].CertificateID != "CERT-PREMIO-1-0010" {
		t.Fatalf("outcomes = %+v", res.Outcomes)
	}
}
