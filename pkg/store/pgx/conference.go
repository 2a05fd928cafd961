package pgx

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/confmine/confmine/pkg/common"
)

func (s *PipelineStore) CreateConference(ctx context.Context, conf common.Conference) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx,
		`INSERT INTO conferences (title, url, year, wayback_url, accessible)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (title) DO UPDATE SET url = EXCLUDED.url
		 RETURNING id`,
		conf.Title, conf.URL, conf.Year, conf.WaybackURL, conf.Accessible,
	).Scan(&id)
	if err != nil {
		return -1, err
	}
	return id, nil
}

func (s *PipelineStore) GetConference(ctx context.Context, id int64) (common.Conference, error) {
	var conf common.Conference
	var wayback, accessible pgtype.Text
	err := s.conn.QueryRow(ctx,
		`SELECT id, title, url, year, wayback_url, accessible
		 FROM conferences WHERE id = $1`,
		id,
	).Scan(&conf.ID, &conf.Title, &conf.URL, &conf.Year, &wayback, &accessible)
	if err != nil {
		return common.Conference{}, err
	}
	conf.WaybackURL = wayback.String
	conf.Accessible = accessible.String
	return conf, nil
}

func (s *PipelineStore) ListConferences(ctx context.Context) ([]common.Conference, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id, title, url, year, wayback_url, accessible
		 FROM conferences ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	confs := make([]common.Conference, 0)
	for rows.Next() {
		var conf common.Conference
		var wayback, accessible pgtype.Text
		if err := rows.Scan(&conf.ID, &conf.Title, &conf.URL, &conf.Year, &wayback, &accessible); err != nil {
			return nil, err
		}
		conf.WaybackURL = wayback.String
		conf.Accessible = accessible.String
		confs = append(confs, conf)
	}
	return confs, rows.Err()
}

// MarkAccessibility records the crawl accessibility status of a conference
// page URL. The statement is parameterized; status and url are never
// interpolated into the SQL text.
func (s *PipelineStore) MarkAccessibility(ctx context.Context, url string, status string) error {
	_, err := s.conn.Exec(ctx,
		`UPDATE conferences SET accessible = $1 WHERE url = $2`,
		status, url)
	return err
}

func (s *PipelineStore) AddProcessStat(ctx context.Context, confID int64, statType string, amount int, durationMs int64) error {
	_, err := s.conn.Exec(ctx,
		`INSERT INTO process_stats (conf_id, stat_type, amount, duration_ms)
		 VALUES ($1, $2, $3, $4)`,
		confID, statType, amount, durationMs)
	return err
}
