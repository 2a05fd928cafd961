package graphstore

import (
	"context"
	"fmt"

	"github.com/confmine/confmine/pkg/common"
)

func writeReturningID(ctx context.Context, s Session, query string, params map[string]any) (int64, error) {
	res, err := s.ExecuteWrite(ctx, func(ctx context.Context, tx Transaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	if err != nil {
		return -1, err
	}
	id, ok := res.(int64)
	if !ok {
		return -1, fmt.Errorf("graph store returned %T, expected node id", res)
	}
	return id, nil
}

func writeVoid(ctx context.Context, s Session, query string, params map[string]any) error {
	_, err := s.ExecuteWrite(ctx, func(ctx context.Context, tx Transaction) (any, error) {
		return tx.Run(ctx, query, params)
	})
	return err
}

// CreatePerson merges a person node by name and returns its graph id.
func CreatePerson(ctx context.Context, s Session, name string) (int64, error) {
	return writeReturningID(ctx, s,
		`MERGE (p:Person {name: $name}) RETURN id(p)`,
		map[string]any{"name": name})
}

// CreateOrganization merges an organization node by name and returns its
// graph id.
func CreateOrganization(ctx context.Context, s Session, name string) (int64, error) {
	return writeReturningID(ctx, s,
		`MERGE (o:Organization {name: $name}) RETURN id(o)`,
		map[string]any{"name": name})
}

// CreateConference merges a conference node keyed on title and returns its
// graph id.
func CreateConference(ctx context.Context, s Session, conf common.Conference) (int64, error) {
	return writeReturningID(ctx, s,
		`MERGE (c:Conference {title: $title})
		 SET c.url = $url, c.year = $year
		 RETURN id(c)`,
		map[string]any{
			"title": conf.Title,
			"url":   conf.URL,
			"year":  conf.Year,
		})
}

// CreateRoleRel relates a person to a conference with the given role text.
func CreateRoleRel(ctx context.Context, s Session, personID int64, role string, confID int64) error {
	return writeVoid(ctx, s,
		`MATCH (p:Person), (c:Conference)
		 WHERE id(p) = $person_id AND id(c) = $conf_id
		 MERGE (p)-[r:HAS_ROLE {role: $role}]->(c)
		 RETURN id(r)`,
		map[string]any{
			"person_id": personID,
			"conf_id":   confID,
			"role":      role,
		})
}

// CreateAffiliationRel relates a person to an organization.
func CreateAffiliationRel(ctx context.Context, s Session, personID int64, orgID int64) error {
	return writeVoid(ctx, s,
		`MATCH (p:Person), (o:Organization)
		 WHERE id(p) = $person_id AND id(o) = $org_id
		 MERGE (p)-[r:AFFILIATED_WITH]->(o)
		 RETURN id(r)`,
		map[string]any{
			"person_id": personID,
			"org_id":    orgID,
		})
}

// UpdateOrgLocation overwrites the location property of an organization
// node.
func UpdateOrgLocation(ctx context.Context, s Session, orgID int64, location string) error {
	return writeVoid(ctx, s,
		`MATCH (o:Organization) WHERE id(o) = $org_id
		 SET o.location = $location
		 RETURN id(o)`,
		map[string]any{
			"org_id":   orgID,
			"location": location,
		})
}
