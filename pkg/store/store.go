package store

import (
	"context"

	"github.com/confmine/confmine/pkg/common"
)

// LabelMode selects which label field of a page line is authoritative when
// lines are read back for extraction.
type LabelMode string

const (
	// ModeGold uses the hand-annotated label.
	ModeGold LabelMode = "gold"
	// ModePrimary uses the primary classifier's prediction.
	ModePrimary LabelMode = "primary"
	// ModeSecondary uses the secondary classifier's prediction.
	ModeSecondary LabelMode = "secondary"
)

// PersonFacts is a person together with the role and affiliation facts
// recorded for one conference.
type PersonFacts struct {
	Person        common.Person `json:"person"`
	Roles         []string      `json:"roles"`
	Organizations []string      `json:"organizations"`
}

// Store is the relational persistence capability of the pipeline. All
// statements are parameterized; implementations never interpolate values
// into SQL text.
//
// UpsertPerson and UpsertOrganization are idempotent insert-or-get
// operations keyed on the exact name string: repeated calls with the same
// name return the same id, while a differently cased or spaced name creates
// a distinct record. The relational id they return is the canonical identity
// of the entity.
type Store interface {
	// Conferences.
	CreateConference(ctx context.Context, conf common.Conference) (int64, error)
	GetConference(ctx context.Context, id int64) (common.Conference, error)
	ListConferences(ctx context.Context) ([]common.Conference, error)
	MarkAccessibility(ctx context.Context, url string, status string) error

	// Pages and lines.
	AddPage(ctx context.Context, confID int64, url string, snapshotKey string) (int64, error)
	AddLines(ctx context.Context, pageID int64, lines []common.Line) error
	GetConferencePages(ctx context.Context, confID int64) ([]int64, error)
	// GetLines returns the page's lines in ascending line order, filtered to
	// non-empty text and a non-Undefined label for the configured label mode.
	GetLines(ctx context.Context, pageID int64) ([]common.Line, error)

	// Canonical entities and relations.
	UpsertPerson(ctx context.Context, name string) (int64, error)
	UpsertOrganization(ctx context.Context, name string) (int64, error)
	AddPersonRole(ctx context.Context, personID int64, confID int64, roleType string) error
	AddPersonOrganization(ctx context.Context, personID int64, orgID int64) error
	UpdateOrganizationLocation(ctx context.Context, orgID int64, location string) error

	// Reporting.
	ListConferencePersons(ctx context.Context, confID int64) ([]PersonFacts, error)
	AddProcessStat(ctx context.Context, confID int64, statType string, amount int, durationMs int64) error
}
