package certs

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/event-soft/eventsoft-backend/internal/evalengine"
	"github.com/event-soft/eventsoft-backend/internal/inscription"
	"github.com/event-soft/eventsoft-backend/internal/user"
)

type Kind string

const (
	KindParticipation Kind = "P"
	KindEvaluator     Kind = "E"
	KindAward         Kind = "PREMIO"
)

func ValidKind(k Kind) bool {
	return k == KindParticipation || k == KindEvaluator || k == KindAward
}

// CertificateID is deterministic per (event, kind, subject); re-issuing
// yields the same identifier.
func CertificateID(kind Kind, eventID, subjectID int64) string {
	return fmt.Sprintf("CERT-%s-%d-%04d", kind, eventID, subjectID)
}

type ManifestEntry struct {
	SubjectID      int64          `json:"subject_id"`
	DisplayName    string         `json:"display_name"`
	Email          string         `json:"email"`
	CertificateID  string         `json:"certificate_id"`
	DynamicPayload map[string]any `json:"dynamic_payload"`
}

// AwardTuple names one awardee explicitly. Position, when non-zero, is
// verified against the computed podium.
type AwardTuple struct {
	ParticipantID int64  `json:"participant_id"`
	Position      int    `json:"position,omitempty"`
	Label         string `json:"label"`
}

var (
	ErrUnknownKind      = errors.New("unknown certificate kind")
	ErrNotInRanking     = errors.New("participant is not in the ranking")
	ErrPositionMismatch = errors.New("declared position does not match the ranking")
)

type SubjectLister interface {
	ParticipantsForEvent(ctx context.Context, eventID int64) ([]inscription.ParticipantEvent, error)
	EvaluatorsForEvent(ctx context.Context, eventID int64) ([]inscription.EvaluatorEvent, error)
}

type PodiumSource interface {
	Podium(ctx context.Context, eventID int64) ([]evalengine.PodiumRow, error)
}

type Directory interface {
	Directory(ctx context.Context, ids []int64) (map[int64]user.Profile, error)
}

// Manifests assembles the deterministic subject lists handed to the
// delivery collaborators.
type Manifests struct {
	events EventGetter
	elig   *Eligibility
	insc   SubjectLister
	podium PodiumSource
	users  Directory
}

func NewManifests(events EventGetter, elig *Eligibility, insc SubjectLister, podium PodiumSource, users Directory) *Manifests {
	return &Manifests{events: events, elig: elig, insc: insc, podium: podium, users: users}
}

// keep filters ids down to the requested subjects; nil keeps everyone.
func keep(subjects []int64) func(int64) bool {
	if subjects == nil {
		return func(int64) bool { return true }
	}
	set := make(map[int64]bool, len(subjects))
	for _, id := range subjects {
		set[id] = true
	}
	return func(id int64) bool { return set[id] }
}

// Participation lists every eligible participant enrolled in the event,
// group members included; the podium is consulted only for the optional
// final score, never to decide who gets a certificate. Entries are
// ordered by subject id. A non-nil subjects slice restricts the
// manifest to those ids.
func (m *Manifests) Participation(ctx context.Context, eventID int64, subjects []int64) ([]ManifestEntry, error) {
	ev, err := m.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	enrolled, err := m.insc.ParticipantsForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	sort.Slice(enrolled, func(i, j int) bool { return enrolled[i].ParticipantID < enrolled[j].ParticipantID })

	wanted := keep(subjects)
	ids := make([]int64, 0, len(enrolled))
	for _, p := range enrolled {
		if wanted(p.ParticipantID) {
			ids = append(ids, p.ParticipantID)
		}
	}
	profiles, err := m.users.Directory(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Group members never rank, so only leaders and individuals have a
	// podium score to carry.
	finalScores := map[int64]float64{}
	if ev.Policy.IncludeScoreOnCert {
		rows, err := m.podium.Podium(ctx, eventID)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			if r.ConsScore != nil {
				finalScores[r.ParticipantID] = *r.ConsScore
			}
		}
	}

	var out []ManifestEntry
	for _, pid := range ids {
		res, err := m.elig.Participant(ctx, eventID, pid)
		if err != nil {
			return nil, err
		}
		if !res.Eligible {
			continue
		}
		payload := map[string]any{"attestation": "participation"}
		if score, ok := finalScores[pid]; ok {
			payload["final_score"] = score
		}
		p := profiles[pid]
		out = append(out, ManifestEntry{
			SubjectID:      pid,
			DisplayName:    p.FullName,
			Email:          p.Email,
			CertificateID:  CertificateID(KindParticipation, eventID, pid),
			DynamicPayload: payload,
		})
	}
	return out, nil
}

// Evaluators lists approved evaluators who met the event's NMin, with
// their scored-work counter in the payload. Entries are ordered by
// subject id; a non-nil subjects slice restricts the manifest.
func (m *Manifests) Evaluators(ctx context.Context, eventID int64, subjects []int64) ([]ManifestEntry, error) {
	evs, err := m.insc.EvaluatorsForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	sort.Slice(evs, func(i, j int) bool { return evs[i].EvaluatorID < evs[j].EvaluatorID })

	wanted := keep(subjects)
	ids := make([]int64, 0, len(evs))
	for _, v := range evs {
		if wanted(v.EvaluatorID) {
			ids = append(ids, v.EvaluatorID)
		}
	}
	profiles, err := m.users.Directory(ctx, ids)
	if err != nil {
		return nil, err
	}

	var out []ManifestEntry
	for _, vid := range ids {
		res, err := m.elig.Evaluator(ctx, eventID, vid)
		if err != nil {
			return nil, err
		}
		if !res.Eligible {
			continue
		}
		p := profiles[vid]
		out = append(out, ManifestEntry{
			SubjectID:      vid,
			DisplayName:    p.FullName,
			Email:          p.Email,
			CertificateID:  CertificateID(KindEvaluator, eventID, vid),
			DynamicPayload: map[string]any{"trabajos_evaluated": res.Evidence["scored"]},
		})
	}
	return out, nil
}

// Awards builds entries for the explicitly supplied tuples only. Each
// awardee must be in the ranking; a declared position must match the
// computed one.
func (m *Manifests) Awards(ctx context.Context, eventID int64, tuples []AwardTuple) ([]ManifestEntry, error) {
	rows, err := m.podium.Podium(ctx, eventID)
	if err != nil {
		return nil, err
	}
	byParticipant := make(map[int64]evalengine.PodiumRow, len(rows))
	for _, r := range rows {
		byParticipant[r.ParticipantID] = r
	}

	ids := make([]int64, 0, len(tuples))
	for _, t := range tuples {
		ids = append(ids, t.ParticipantID)
	}
	profiles, err := m.users.Directory(ctx, ids)
	if err != nil {
		return nil, err
	}

	var out []ManifestEntry
	for _, t := range tuples {
		res, err := m.elig.Award(ctx, eventID, t.ParticipantID)
		if err != nil {
			return nil, err
		}
		if !res.Eligible {
			return nil, fmt.Errorf("participant %d: %w (%s)", t.ParticipantID, ErrNotInRanking, res.ReasonCode)
		}
		row, ok := byParticipant[t.ParticipantID]
		if !ok {
			return nil, fmt.Errorf("participant %d: %w", t.ParticipantID, ErrNotInRanking)
		}
		if t.Position != 0 && t.Position != row.Position {
			return nil, fmt.Errorf("participant %d: declared %d, computed %d: %w",
				t.ParticipantID, t.Position, row.Position, ErrPositionMismatch)
		}
		p := profiles[t.ParticipantID]
		out = append(out, ManifestEntry{
			SubjectID:     t.ParticipantID,
			DisplayName:   p.FullName,
			Email:         p.Email,
			CertificateID: CertificateID(KindAward, eventID, t.ParticipantID),
			DynamicPayload: map[string]any{
				"award_label": t.Label,
				"position":    row.Position,
			},
		})
	}
	return out, nil
}

// Build dispatches on kind. Award manifests require tuples and ignore
// the subject filter, since the tuples already name the awardees.
func (m *Manifests) Build(ctx context.Context, eventID int64, kind Kind, tuples []AwardTuple, subjects []int64) ([]ManifestEntry, error) {
	switch kind {
	case KindParticipation:
		return m.Participation(ctx, eventID, subjects)
	case KindEvaluator:
		return m.Evaluators(ctx, eventID, subjects)
	case KindAward:
		return m.Awards(ctx, eventID, tuples)
	default:
		return nil, ErrUnknownKind
	}
}
