package pgx

import (
	"context"
	"fmt"

	"github.com/confmine/confmine/pkg/common"
	"github.com/confmine/confmine/pkg/store"
)

func (s *PipelineStore) AddPage(ctx context.Context, confID int64, url string, snapshotKey string) (int64, error) {
	var id int64
	err := s.conn.QueryRow(ctx,
		`INSERT INTO conference_pages (conf_id, url, snapshot_key)
		 VALUES ($1, $2, $3) RETURNING id`,
		confID, url, snapshotKey,
	).Scan(&id)
	if err != nil {
		return -1, err
	}
	return id, nil
}

// AddLines stores a page's lines in one transaction, replacing any rows an
// earlier delivery of the same page left behind. Line order and indent come
// from the caller; labels default to Undefined until the external classifier
// fills them in.
func (s *PipelineStore) AddLines(ctx context.Context, pageID int64, lines []common.Line) error {
	trx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer trx.Rollback(ctx)

	if _, err := trx.Exec(ctx,
		`DELETE FROM page_lines WHERE page_id = $1`, pageID); err != nil {
		return err
	}

	for _, line := range lines {
		label := line.Label
		if label == "" {
			label = common.LabelUndefined
		}
		_, err := trx.Exec(ctx,
			`INSERT INTO page_lines (page_id, line_num, indent, line_text, label, primary_prediction, secondary_prediction)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			pageID, line.Num, line.Indent, line.Text, label, common.LabelUndefined, common.LabelUndefined)
		if err != nil {
			return err
		}
	}

	return trx.Commit(ctx)
}

func (s *PipelineStore) GetConferencePages(ctx context.Context, confID int64) ([]int64, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id FROM conference_pages WHERE conf_id = $1 ORDER BY id`, confID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// labelColumn maps the configured label mode onto its column. The column
// name is chosen from a fixed set here and never taken from input.
func (s *PipelineStore) labelColumn() (string, error) {
	switch s.mode {
	case store.ModeGold:
		return "label", nil
	case store.ModePrimary:
		return "primary_prediction", nil
	case store.ModeSecondary:
		return "secondary_prediction", nil
	}
	return "", fmt.Errorf("unknown label mode: %q", s.mode)
}

func (s *PipelineStore) GetLines(ctx context.Context, pageID int64) ([]common.Line, error) {
	column, err := s.labelColumn()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, page_id, line_num, indent, line_text, %s
		 FROM page_lines
		 WHERE page_id = $1 AND line_text != '' AND %s != $2
		 ORDER BY line_num`, column, column)

	rows, err := s.conn.Query(ctx, query, pageID, common.LabelUndefined)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]common.Line, 0)
	for rows.Next() {
		var line common.Line
		if err := rows.Scan(&line.ID, &line.PageID, &line.Num, &line.Indent, &line.Text, &line.Label); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
