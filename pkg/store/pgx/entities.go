package pgx

import (
	"context"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/confmine/confmine/pkg/common"
	"github.com/confmine/confmine/pkg/store"
)

// UpsertPerson inserts a person if the exact name string is unseen and
// returns the canonical relational id either way.
func (s *PipelineStore) UpsertPerson(ctx context.Context, name string) (int64, error) {
	publicID, err := gonanoid.New()
	if err != nil {
		return -1, err
	}

	_, err = s.conn.Exec(ctx,
		`INSERT INTO persons (public_id, name) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		publicID, name)
	if err != nil {
		return -1, err
	}

	var id int64
	err = s.conn.QueryRow(ctx,
		`SELECT id FROM persons WHERE name = $1`, name).Scan(&id)
	if err != nil {
		return -1, err
	}
	return id, nil
}

// UpsertOrganization inserts an organization if the exact name string is
// unseen and returns the canonical relational id either way.
func (s *PipelineStore) UpsertOrganization(ctx context.Context, name string) (int64, error) {
	publicID, err := gonanoid.New()
	if err != nil {
		return -1, err
	}

	_, err = s.conn.Exec(ctx,
		`INSERT INTO organizations (public_id, name) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		publicID, name)
	if err != nil {
		return -1, err
	}

	var id int64
	err = s.conn.QueryRow(ctx,
		`SELECT id FROM organizations WHERE name = $1`, name).Scan(&id)
	if err != nil {
		return -1, err
	}
	return id, nil
}

func (s *PipelineStore) AddPersonRole(ctx context.Context, personID int64, confID int64, roleType string) error {
	_, err := s.conn.Exec(ctx,
		`INSERT INTO person_role (role_type, conf_id, person_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		roleType, confID, personID)
	return err
}

func (s *PipelineStore) AddPersonOrganization(ctx context.Context, personID int64, orgID int64) error {
	_, err := s.conn.Exec(ctx,
		`INSERT INTO person_organization (org_id, person_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		orgID, personID)
	return err
}

// UpdateOrganizationLocation overwrites the stored location. A later
// sighting within the same conference wins.
func (s *PipelineStore) UpdateOrganizationLocation(ctx context.Context, orgID int64, location string) error {
	_, err := s.conn.Exec(ctx,
		`UPDATE organizations SET location = $1 WHERE id = $2`,
		location, orgID)
	return err
}

func (s *PipelineStore) ListConferencePersons(ctx context.Context, confID int64) ([]store.PersonFacts, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT p.id, p.public_id, p.name,
		        COALESCE(array_agg(DISTINCT pr.role_type) FILTER (WHERE pr.role_type IS NOT NULL), '{}'),
		        COALESCE(array_agg(DISTINCT o.name) FILTER (WHERE o.name IS NOT NULL), '{}')
		 FROM persons p
		 JOIN person_role pr ON pr.person_id = p.id AND pr.conf_id = $1
		 LEFT JOIN person_organization po ON po.person_id = p.id
		 LEFT JOIN organizations o ON o.id = po.org_id
		 GROUP BY p.id, p.public_id, p.name
		 ORDER BY p.name`, confID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facts := make([]store.PersonFacts, 0)
	for rows.Next() {
		var f store.PersonFacts
		var person common.Person
		if err := rows.Scan(&person.ID, &person.PublicID, &person.Name, &f.Roles, &f.Organizations); err != nil {
			return nil, err
		}
		f.Person = person
		facts = append(facts, f)
	}
	return facts, rows.Err()
}
