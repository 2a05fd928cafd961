package extract

import (
	"context"
	"errors"
	"fmt"

	"github.com/confmine/confmine/pkg/common"
	"github.com/confmine/confmine/pkg/graphstore"
	"github.com/confmine/confmine/pkg/logger"
	"github.com/confmine/confmine/pkg/ner"
	"github.com/confmine/confmine/pkg/store"
)

// Engine turns a conference's classified page lines into person,
// organization and role facts, persisting them through both stores.
//
// Processing is sequential: blocks carry ordered pairing state, so lines of
// one conference are never processed concurrently.
type Engine struct {
	store     store.Store
	graph     graphstore.Driver // nil disables the graph mirror
	extractor ner.Extractor

	indentDiffThresh int
	lnumDiffThresh   int
}

// NewEngineParams configures an extraction engine.
//
// Graph may be nil, in which case the engine runs in relational-only mode.
// IndentDiffThresh and LnumDiffThresh are the strict exclusive grouping
// thresholds; non-positive values fall back to the defaults.
type NewEngineParams struct {
	Store     store.Store
	Graph     graphstore.Driver
	Extractor ner.Extractor

	IndentDiffThresh int
	LnumDiffThresh   int
}

// Grouping defaults, in indentation columns and line numbers.
const (
	DefaultIndentDiffThresh = 10
	DefaultLnumDiffThresh   = 10
)

// NewEngine creates an extraction engine. The extractor is handed down by
// reference and must already be initialized by the host application.
func NewEngine(params NewEngineParams) *Engine {
	indent := params.IndentDiffThresh
	if indent <= 0 {
		indent = DefaultIndentDiffThresh
	}
	lnum := params.LnumDiffThresh
	if lnum <= 0 {
		lnum = DefaultLnumDiffThresh
	}

	return &Engine{
		store:            params.Store,
		graph:            params.Graph,
		extractor:        params.Extractor,
		indentDiffThresh: indent,
		lnumDiffThresh:   lnum,
	}
}

// ProcessConference loads the conference's relevant lines, groups them into
// blocks and pairs each block's content into facts.
//
// The graph session is scoped to this call: opened at entry (a failed open
// degrades to relational-only mode), closed on every exit path. A close
// failure, or a session reporting itself still open after Close, surfaces
// as the returned error because it indicates unflushed graph state; the
// relational result is complete regardless.
func (e *Engine) ProcessConference(ctx context.Context, conf common.Conference) (err error) {
	lines, err := e.conferenceLines(ctx, conf.ID)
	if err != nil {
		return fmt.Errorf("failed to load lines for conference %d: %w", conf.ID, err)
	}

	blocks := Group(lines, e.indentDiffThresh, e.lnumDiffThresh)
	logger.Info("Processing conference", "conf_id", conf.ID, "title", conf.Title, "lines", len(lines), "blocks", len(blocks))

	writer := &conferenceWriter{
		store:  e.store,
		confID: conf.ID,
	}

	if e.graph != nil {
		session, sessionErr := e.graph.NewSession(ctx)
		if sessionErr != nil {
			logger.Warn("Failed to open graph session, continuing relational-only", "conf_id", conf.ID, "err", sessionErr)
		} else {
			writer.session = session
			graphConfID, confErr := graphstore.CreateConference(ctx, session, conf)
			if confErr != nil {
				logger.Warn("Graph mirror write failed for conference", "conf_id", conf.ID, "err", confErr)
			} else {
				writer.graphConfID = common.GraphRef{ID: graphConfID, Valid: true}
			}
		}
	}

	defer func() {
		if writer.session == nil {
			return
		}
		closeErr := writer.session.Close(ctx)
		if closeErr == nil && !writer.session.Closed() {
			closeErr = errors.New("session reports itself open after close")
		}
		if closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close graph session for conference %d: %w", conf.ID, closeErr)
		}
	}()

	for _, block := range blocks {
		e.processBlock(ctx, writer, block)
	}

	return nil
}

func (e *Engine) conferenceLines(ctx context.Context, confID int64) ([]common.Line, error) {
	pageIDs, err := e.store.GetConferencePages(ctx, confID)
	if err != nil {
		return nil, err
	}

	lines := make([]common.Line, 0)
	for _, pageID := range pageIDs {
		pageLines, err := e.store.GetLines(ctx, pageID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pageLines...)
	}
	return lines, nil
}

// processBlock walks a block's content in order, pairing Person and
// Affiliation lines and handling Complex lines standalone. Fact-level
// failures are logged and skipped; the rest of the block continues.
func (e *Engine) processBlock(ctx context.Context, writer *conferenceWriter, block common.Block) {
	logger.Debug("Processing block", "role", block.RoleLabel.Text, "content_lines", len(block.Content))

	var pendingPerson *common.Line
	var pendingAff *common.Line

	for _, line := range block.Content {
		switch line.Label {
		case common.LabelComplex:
			// Standalone: pairing state is untouched.
			e.processComplex(ctx, writer, line, block.RoleLabel)
		case common.LabelPerson:
			if pendingAff != nil {
				e.processPair(ctx, writer, line, *pendingAff, block.RoleLabel)
				pendingPerson, pendingAff = nil, nil
			} else {
				// A second consecutive Person replaces the pending one.
				pendingPerson = &line
			}
		case common.LabelAffiliation:
			if pendingPerson != nil {
				e.processPair(ctx, writer, *pendingPerson, line, block.RoleLabel)
				pendingPerson, pendingAff = nil, nil
			} else {
				pendingAff = &line
			}
		default:
			logger.Warn("Unexpected label in block", "label", line.Label, "text", line.Text)
		}
	}

	if pendingPerson != nil {
		logger.Debug("Discarding unpaired trailing person line", "text", pendingPerson.Text)
	}
	if pendingAff != nil {
		logger.Debug("Discarding unpaired trailing affiliation line", "text", pendingAff.Text)
	}
}

// processComplex handles a line believed to contain person and affiliation
// together.
func (e *Engine) processComplex(ctx context.Context, writer *conferenceWriter, line common.Line, roleLabel common.Line) {
	parts, err := extractLineParts(ctx, e.extractor, line.Text)
	if err != nil {
		logger.Error("Entity extraction failed for complex line", "text", line.Text, "err", err)
		return
	}

	var personRef, orgRef common.EntityRef
	havePerson, haveOrg := false, false

	if parts.Person != "" {
		personRef, err = writer.addPerson(ctx, parts.Person)
		if err != nil {
			logger.Error("Failed to store person", "name", parts.Person, "err", err)
		} else {
			havePerson = true
			if err := writer.addRoleRel(ctx, personRef, roleLabel.Text); err != nil {
				logger.Error("Failed to store role relation", "name", parts.Person, "role", roleLabel.Text, "err", err)
			}
		}
	}

	if parts.Organization != "" {
		orgRef, err = writer.addOrganization(ctx, parts.Organization)
		if err != nil {
			logger.Error("Failed to store organization", "name", parts.Organization, "err", err)
		} else {
			haveOrg = true
			if parts.Location != "" {
				if err := writer.updateOrgLocation(ctx, orgRef, parts.Location); err != nil {
					logger.Error("Failed to store organization location", "name", parts.Organization, "location", parts.Location, "err", err)
				}
			}
		}
	}

	if havePerson && haveOrg {
		if err := writer.addAffiliationRel(ctx, personRef, orgRef); err != nil {
			logger.Error("Failed to store affiliation relation", "person", parts.Person, "org", parts.Organization, "err", err)
		}
	}
}

// processPair emits the facts for a matched Person/Affiliation line pair.
// The person name is the person line's text verbatim; organization and
// location are extracted from the affiliation text. The role fact is always
// emitted; the affiliation facts require an organization mention.
func (e *Engine) processPair(ctx context.Context, writer *conferenceWriter, person common.Line, affiliation common.Line, roleLabel common.Line) {
	personRef, err := writer.addPerson(ctx, person.Text)
	if err != nil {
		logger.Error("Failed to store person", "name", person.Text, "err", err)
		return
	}
	if err := writer.addRoleRel(ctx, personRef, roleLabel.Text); err != nil {
		logger.Error("Failed to store role relation", "name", person.Text, "role", roleLabel.Text, "err", err)
	}

	parts, err := extractLineParts(ctx, e.extractor, affiliation.Text)
	if err != nil {
		logger.Error("Entity extraction failed for affiliation line", "text", affiliation.Text, "err", err)
		return
	}
	if parts.Organization == "" {
		logger.Warn("Affiliation not processed, no organization found", "text", affiliation.Text)
		return
	}

	orgRef, err := writer.addOrganization(ctx, parts.Organization)
	if err != nil {
		logger.Error("Failed to store organization", "name", parts.Organization, "err", err)
		return
	}
	if parts.Location != "" {
		if err := writer.updateOrgLocation(ctx, orgRef, parts.Location); err != nil {
			logger.Error("Failed to store organization location", "name", parts.Organization, "location", parts.Location, "err", err)
		}
	}
	if err := writer.addAffiliationRel(ctx, personRef, orgRef); err != nil {
		logger.Error("Failed to store affiliation relation", "person", person.Text, "org", parts.Organization, "err", err)
	}
}
