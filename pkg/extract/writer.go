package extract

import (
	"context"

	"github.com/confmine/confmine/pkg/common"
	"github.com/confmine/confmine/pkg/graphstore"
	"github.com/confmine/confmine/pkg/logger"
	"github.com/confmine/confmine/pkg/store"
)

// conferenceWriter persists facts for one conference into both stores.
//
// The relational write always happens first and establishes the canonical
// identity; it is the only write whose failure aborts a fact. The graph
// mirror is advisory: when the session is absent or a graph write fails,
// the relational record stands and the graph ref stays invalid.
type conferenceWriter struct {
	store   store.Store
	session graphstore.Session // nil in relational-only mode

	confID      int64
	graphConfID common.GraphRef
}

func (w *conferenceWriter) addPerson(ctx context.Context, name string) (common.EntityRef, error) {
	relID, err := w.store.UpsertPerson(ctx, name)
	if err != nil {
		return common.EntityRef{}, err
	}

	ref := common.EntityRef{Rel: relID}
	if w.session != nil {
		graphID, err := graphstore.CreatePerson(ctx, w.session, name)
		if err != nil {
			logger.Warn("Graph mirror write failed for person", "name", name, "err", err)
		} else {
			ref.Graph = common.GraphRef{ID: graphID, Valid: true}
		}
	}
	return ref, nil
}

func (w *conferenceWriter) addOrganization(ctx context.Context, name string) (common.EntityRef, error) {
	relID, err := w.store.UpsertOrganization(ctx, name)
	if err != nil {
		return common.EntityRef{}, err
	}

	ref := common.EntityRef{Rel: relID}
	if w.session != nil {
		graphID, err := graphstore.CreateOrganization(ctx, w.session, name)
		if err != nil {
			logger.Warn("Graph mirror write failed for organization", "name", name, "err", err)
		} else {
			ref.Graph = common.GraphRef{ID: graphID, Valid: true}
		}
	}
	return ref, nil
}

func (w *conferenceWriter) addRoleRel(ctx context.Context, person common.EntityRef, role string) error {
	if err := w.store.AddPersonRole(ctx, person.Rel, w.confID, role); err != nil {
		return err
	}

	if w.session != nil && person.Graph.Valid && w.graphConfID.Valid {
		err := graphstore.CreateRoleRel(ctx, w.session, person.Graph.ID, role, w.graphConfID.ID)
		if err != nil {
			logger.Warn("Graph mirror write failed for role relation", "role", role, "err", err)
		}
	}
	return nil
}

func (w *conferenceWriter) addAffiliationRel(ctx context.Context, person common.EntityRef, org common.EntityRef) error {
	if err := w.store.AddPersonOrganization(ctx, person.Rel, org.Rel); err != nil {
		return err
	}

	if w.session != nil && person.Graph.Valid && org.Graph.Valid {
		err := graphstore.CreateAffiliationRel(ctx, w.session, person.Graph.ID, org.Graph.ID)
		if err != nil {
			logger.Warn("Graph mirror write failed for affiliation relation", "err", err)
		}
	}
	return nil
}

func (w *conferenceWriter) updateOrgLocation(ctx context.Context, org common.EntityRef, location string) error {
	if err := w.store.UpdateOrganizationLocation(ctx, org.Rel, location); err != nil {
		return err
	}

	if w.session != nil && org.Graph.Valid {
		err := graphstore.UpdateOrgLocation(ctx, w.session, org.Graph.ID, location)
		if err != nil {
			logger.Warn("Graph mirror write failed for organization location", "location", location, "err", err)
		}
	}
	return nil
}
