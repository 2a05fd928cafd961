package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/confmine/confmine/pkg/common"
	"github.com/confmine/confmine/pkg/graphstore"
	"github.com/confmine/confmine/pkg/ner"
	"github.com/confmine/confmine/pkg/store"
)

// recordingStore implements store.Store in memory and records every
// mutation in order.
type recordingStore struct {
	lines map[int64][]common.Line

	persons map[string]int64
	orgs    map[string]int64
	nextID  int64

	mutations []string

	failPerson string
}

func newRecordingStore(lines map[int64][]common.Line) *recordingStore {
	return &recordingStore{
		lines:   lines,
		persons: make(map[string]int64),
		orgs:    make(map[string]int64),
	}
}

func (s *recordingStore) CreateConference(ctx context.Context, conf common.Conference) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *recordingStore) GetConference(ctx context.Context, id int64) (common.Conference, error) {
	return common.Conference{}, errors.New("not implemented")
}

func (s *recordingStore) ListConferences(ctx context.Context) ([]common.Conference, error) {
	return nil, errors.New("not implemented")
}

func (s *recordingStore) MarkAccessibility(ctx context.Context, url string, status string) error {
	return errors.New("not implemented")
}

func (s *recordingStore) AddPage(ctx context.Context, confID int64, url string, snapshotKey string) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *recordingStore) AddLines(ctx context.Context, pageID int64, lines []common.Line) error {
	return errors.New("not implemented")
}

func (s *recordingStore) GetConferencePages(ctx context.Context, confID int64) ([]int64, error) {
	pages := make([]int64, 0, len(s.lines))
	for id := int64(1); id <= int64(len(s.lines)); id++ {
		pages = append(pages, id)
	}
	return pages, nil
}

func (s *recordingStore) GetLines(ctx context.Context, pageID int64) ([]common.Line, error) {
	return s.lines[pageID], nil
}

func (s *recordingStore) UpsertPerson(ctx context.Context, name string) (int64, error) {
	if name == s.failPerson {
		return 0, errors.New("person write failed")
	}
	if id, ok := s.persons[name]; ok {
		return id, nil
	}
	s.nextID++
	s.persons[name] = s.nextID
	s.mutations = append(s.mutations, "person:"+name)
	return s.nextID, nil
}

func (s *recordingStore) UpsertOrganization(ctx context.Context, name string) (int64, error) {
	if id, ok := s.orgs[name]; ok {
		return id, nil
	}
	s.nextID++
	s.orgs[name] = s.nextID
	s.mutations = append(s.mutations, "org:"+name)
	return s.nextID, nil
}

func (s *recordingStore) AddPersonRole(ctx context.Context, personID int64, confID int64, roleType string) error {
	s.mutations = append(s.mutations, fmt.Sprintf("role:%d:%s", personID, roleType))
	return nil
}

func (s *recordingStore) AddPersonOrganization(ctx context.Context, personID int64, orgID int64) error {
	s.mutations = append(s.mutations, fmt.Sprintf("affiliation:%d:%d", personID, orgID))
	return nil
}

func (s *recordingStore) UpdateOrganizationLocation(ctx context.Context, orgID int64, location string) error {
	s.mutations = append(s.mutations, fmt.Sprintf("location:%d:%s", orgID, location))
	return nil
}

func (s *recordingStore) ListConferencePersons(ctx context.Context, confID int64) ([]store.PersonFacts, error) {
	return nil, errors.New("not implemented")
}

func (s *recordingStore) AddProcessStat(ctx context.Context, confID int64, statType string, amount int, durationMs int64) error {
	return nil
}

type fakeTransaction struct {
	session *fakeSession
}

func (t *fakeTransaction) Run(ctx context.Context, query string, params map[string]any) (any, error) {
	t.session.runs = append(t.session.runs, query)
	t.session.nextID++
	return t.session.nextID, nil
}

type fakeSession struct {
	nextID int64
	runs   []string

	writeErr  error
	closeErr  error
	stayOpen  bool
	closed    bool
	closeCall int
}

func (s *fakeSession) ExecuteWrite(ctx context.Context, fn graphstore.TxFunc) (any, error) {
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	return fn(ctx, &fakeTransaction{session: s})
}

func (s *fakeSession) Close(ctx context.Context) error {
	s.closeCall++
	if s.closeErr != nil {
		return s.closeErr
	}
	if !s.stayOpen {
		s.closed = true
	}
	return nil
}

func (s *fakeSession) Closed() bool {
	return s.closed
}

type fakeDriver struct {
	session    *fakeSession
	sessionErr error
}

func (d *fakeDriver) NewSession(ctx context.Context) (graphstore.Session, error) {
	if d.sessionErr != nil {
		return nil, d.sessionErr
	}
	return d.session, nil
}

func (d *fakeDriver) Close(ctx context.Context) error {
	return nil
}

func newTestEngine(s store.Store, g graphstore.Driver, ex ner.Extractor) *Engine {
	return NewEngine(NewEngineParams{
		Store:     s,
		Graph:     g,
		Extractor: ex,
	})
}

func pageLines(lines ...common.Line) map[int64][]common.Line {
	return map[int64][]common.Line{1: lines}
}

func TestProcessConference_PersonAffiliationPair(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Program Chair"),
		line(2, 2, common.LabelPerson, "Alice"),
		line(3, 2, common.LabelAffiliation, "MIT, Cambridge"),
	))
	ex := &scriptedExtractor{
		responses: map[string][]ner.Entity{
			"MIT":        {{Text: "MIT", Type: ner.EntityOrganization}},
			" Cambridge": {{Text: "Cambridge", Type: ner.EntityLocation}},
		},
	}
	session := &fakeSession{}
	engine := newTestEngine(db, &fakeDriver{session: session}, ex)

	err := engine.ProcessConference(context.Background(), common.Conference{ID: 7, Title: "ICSE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"person:Alice",
		"role:1:Program Chair",
		"org:MIT",
		"location:2:Cambridge",
		"affiliation:1:2",
	}
	if got := strings.Join(db.mutations, ","); got != strings.Join(want, ",") {
		t.Fatalf("unexpected mutations: %v", db.mutations)
	}

	if !session.closed {
		t.Fatal("expected graph session to be closed")
	}
	// Conference node, person node, org node, role rel, location, affiliation rel.
	if len(session.runs) != 6 {
		t.Fatalf("expected 6 graph statements, got %d", len(session.runs))
	}
}

func TestProcessConference_SecondRunIsIdempotent(t *testing.T) {
	lines := pageLines(
		line(1, 0, common.LabelRoleLabel, "Program Chair"),
		line(2, 2, common.LabelPerson, "Bob"),
		line(3, 2, common.LabelAffiliation, "Acme Corp, Springfield"),
	)
	ex := &scriptedExtractor{
		responses: map[string][]ner.Entity{
			"Acme Corp":    {{Text: "Acme Corp", Type: ner.EntityOrganization}},
			" Springfield": {{Text: "Springfield", Type: ner.EntityLocation}},
		},
	}
	db := newRecordingStore(lines)
	engine := newTestEngine(db, nil, ex)

	for run := 0; run < 2; run++ {
		if err := engine.ProcessConference(context.Background(), common.Conference{ID: 7}); err != nil {
			t.Fatalf("run %d: unexpected error: %v", run, err)
		}
	}

	// The entity upserts are absorbed on the second run; only the relation
	// writes repeat, and those are ON CONFLICT DO NOTHING in the real store.
	entityWrites := 0
	for _, m := range db.mutations {
		if strings.HasPrefix(m, "person:") || strings.HasPrefix(m, "org:") {
			entityWrites++
		}
	}
	if entityWrites != 2 {
		t.Fatalf("expected 2 entity writes across both runs, got %d: %v", entityWrites, db.mutations)
	}
}

func TestProcessConference_LastPersonWins(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Chairs"),
		line(2, 2, common.LabelPerson, "Forgotten"),
		line(3, 2, common.LabelPerson, "Alice"),
		line(4, 2, common.LabelAffiliation, "MIT"),
	))
	ex := &scriptedExtractor{
		responses: map[string][]ner.Entity{
			"MIT": {{Text: "MIT", Type: ner.EntityOrganization}},
		},
	}
	engine := newTestEngine(db, nil, ex)

	if err := engine.ProcessConference(context.Background(), common.Conference{ID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, m := range db.mutations {
		if strings.Contains(m, "Forgotten") {
			t.Fatalf("superseded person must not be persisted: %v", db.mutations)
		}
	}
	if _, ok := db.persons["Alice"]; !ok {
		t.Fatalf("expected Alice to be persisted: %v", db.mutations)
	}
}

func TestProcessConference_TrailingPersonDiscarded(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Chairs"),
		line(2, 2, common.LabelPerson, "Alone"),
	))
	engine := newTestEngine(db, nil, &scriptedExtractor{})

	if err := engine.ProcessConference(context.Background(), common.Conference{ID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.mutations) != 0 {
		t.Fatalf("expected no mutations for an unpaired person, got %v", db.mutations)
	}
}

func TestProcessConference_ComplexLine(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Keynote"),
		line(2, 2, common.LabelComplex, "Alice (MIT)"),
	))
	ex := &scriptedExtractor{
		responses: map[string][]ner.Entity{
			"Alice (MIT)": {
				{Text: "Alice", Type: ner.EntityPerson},
				{Text: "MIT", Type: ner.EntityOrganization},
			},
		},
	}
	engine := newTestEngine(db, nil, ex)

	if err := engine.ProcessConference(context.Background(), common.Conference{ID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"person:Alice",
		"role:1:Keynote",
		"org:MIT",
		"affiliation:1:2",
	}
	if got := strings.Join(db.mutations, ","); got != strings.Join(want, ",") {
		t.Fatalf("unexpected mutations: %v", db.mutations)
	}
}

func TestProcessConference_AffiliationWithoutOrganization(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Chairs"),
		line(2, 2, common.LabelPerson, "Alice"),
		line(3, 2, common.LabelAffiliation, "somewhere unrecognizable"),
	))
	engine := newTestEngine(db, nil, &scriptedExtractor{})

	if err := engine.ProcessConference(context.Background(), common.Conference{ID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The role fact still stands; only the affiliation facts are skipped.
	want := []string{"person:Alice", "role:1:Chairs"}
	if got := strings.Join(db.mutations, ","); got != strings.Join(want, ",") {
		t.Fatalf("unexpected mutations: %v", db.mutations)
	}
}

func TestProcessConference_PersonWriteFailureAbortsOnlyThatFact(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Chairs"),
		line(2, 2, common.LabelPerson, "Broken"),
		line(3, 2, common.LabelAffiliation, "IBM"),
		line(4, 2, common.LabelPerson, "Alice"),
		line(5, 2, common.LabelAffiliation, "MIT"),
	))
	db.failPerson = "Broken"
	ex := &scriptedExtractor{
		responses: map[string][]ner.Entity{
			"MIT": {{Text: "MIT", Type: ner.EntityOrganization}},
		},
	}
	engine := newTestEngine(db, nil, ex)

	err := engine.ProcessConference(context.Background(), common.Conference{ID: 1})
	if err != nil {
		t.Fatalf("a failed fact must not fail the run: %v", err)
	}

	// The first pair aborts at the person write, so nothing of it lands;
	// the second pair is unaffected.
	want := []string{
		"person:Alice",
		"role:1:Chairs",
		"org:MIT",
		"affiliation:1:2",
	}
	if got := strings.Join(db.mutations, ","); got != strings.Join(want, ",") {
		t.Fatalf("unexpected mutations: %v", db.mutations)
	}
}

func TestProcessConference_GraphWriteFailureKeepsRelational(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Chairs"),
		line(2, 2, common.LabelPerson, "Alice"),
		line(3, 2, common.LabelAffiliation, "MIT"),
	))
	ex := &scriptedExtractor{
		responses: map[string][]ner.Entity{
			"MIT": {{Text: "MIT", Type: ner.EntityOrganization}},
		},
	}
	session := &fakeSession{writeErr: errors.New("graph down")}
	engine := newTestEngine(db, &fakeDriver{session: session}, ex)

	err := engine.ProcessConference(context.Background(), common.Conference{ID: 1})
	if err != nil {
		t.Fatalf("graph failures must not fail the run: %v", err)
	}
	if len(db.mutations) != 4 {
		t.Fatalf("expected full relational result, got %v", db.mutations)
	}
}

func TestProcessConference_SessionOpenFailureDegrades(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Chairs"),
		line(2, 2, common.LabelPerson, "Alice"),
		line(3, 2, common.LabelAffiliation, "MIT"),
	))
	ex := &scriptedExtractor{
		responses: map[string][]ner.Entity{
			"MIT": {{Text: "MIT", Type: ner.EntityOrganization}},
		},
	}
	engine := newTestEngine(db, &fakeDriver{sessionErr: errors.New("no graph")}, ex)

	if err := engine.ProcessConference(context.Background(), common.Conference{ID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.mutations) != 4 {
		t.Fatalf("expected full relational result, got %v", db.mutations)
	}
}

func TestProcessConference_CloseFailurePropagates(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Chairs"),
	))
	session := &fakeSession{closeErr: errors.New("close failed")}
	engine := newTestEngine(db, &fakeDriver{session: session}, &scriptedExtractor{})

	err := engine.ProcessConference(context.Background(), common.Conference{ID: 1})
	if err == nil {
		t.Fatal("expected close failure to surface")
	}
}

func TestProcessConference_SessionStillOpenAfterClose(t *testing.T) {
	db := newRecordingStore(pageLines(
		line(1, 0, common.LabelRoleLabel, "Chairs"),
	))
	session := &fakeSession{stayOpen: true}
	engine := newTestEngine(db, &fakeDriver{session: session}, &scriptedExtractor{})

	err := engine.ProcessConference(context.Background(), common.Conference{ID: 1})
	if err == nil {
		t.Fatal("expected an error when the session reports itself open")
	}
	if session.closeCall != 1 {
		t.Fatalf("expected exactly one close call, got %d", session.closeCall)
	}
}
