package common

// Line is a single classified line of a crawled conference-program page.
// Lines are immutable once classified; they are owned by the line store and
// only read by the extraction pipeline.
//
// Label carries the authoritative label for the configured label mode
// (gold annotation or one of the classifier predictions); the store resolves
// the mode before handing lines out, so consumers never look at more than
// one label field.
type Line struct {
	ID     int64  `json:"id"`
	PageID int64  `json:"page_id"`
	Num    int    `json:"num"`
	Indent int    `json:"indent"`
	Text   string `json:"text"`
	Label  string `json:"label"`
}

// Line labels assigned by the upstream classifier.
const (
	LabelRoleLabel   = "Role-Label"
	LabelPerson      = "Person"
	LabelAffiliation = "Affiliation"
	LabelComplex     = "Complex"
	LabelUndefined   = "Undefined"
)

// Block is a role-label line together with the ordered content lines the
// grouper attributed to it. Blocks are transient: they exist only between
// grouping and pairing and are never persisted.
type Block struct {
	RoleLabel Line
	Content   []Line
}

// Conference is the unit of batch processing.
type Conference struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Year       int    `json:"year"`
	WaybackURL string `json:"wayback_url"`
	Accessible string `json:"accessible"`
}

// Person is a canonical person record. Name equality is exact (case and
// whitespace sensitive); fuzzy matching happens only in the later
// disambiguation pass, never at write time.
type Person struct {
	ID       int64  `json:"id"`
	PublicID string `json:"public_id"`
	Name     string `json:"name"`
}

// Organization is a canonical organization record. Location is nullable and
// overwritten whenever a later observation within the same conference
// provides one.
type Organization struct {
	ID       int64  `json:"id"`
	PublicID string `json:"public_id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// GraphRef points at the graph-store mirror of a relational record. The
// relational id is the source of truth for identity; the graph id is a
// derived, possibly absent mirror, so it is carried as an explicit
// valid/invalid pair rather than a numeric sentinel.
type GraphRef struct {
	ID    int64
	Valid bool
}

// EntityRef identifies one logical entity across both stores: the relational
// id is always present, the graph mirror may be absent.
type EntityRef struct {
	Rel   int64
	Graph GraphRef
}
