package queue

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/confmine/confmine/internal/storage"
	"github.com/confmine/confmine/pkg/common"
	"github.com/confmine/confmine/pkg/logger"
	"github.com/confmine/confmine/pkg/store"
	pgstore "github.com/confmine/confmine/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessIngestMessage fetches a page snapshot from S3, splits it into lines
// with their indentation, and stores them with the Undefined label for the
// classifier to fill in later.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	conn *pgxpool.Pool,
	msg string,
) error {
	var data IngestPageMsg
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	raw, err := storage.GetFile(ctx, s3Client, data.FileKey)
	if err != nil {
		return err
	}

	lines := SplitSnapshot(data.PageID, string(raw))

	db := pgstore.NewPipelineStoreWithConnection(conn, store.ModeGold)
	if err := db.AddLines(ctx, data.PageID, lines); err != nil {
		return err
	}

	logger.Info("[Queue] Ingested page snapshot",
		"conference_id", data.ConferenceID,
		"page_id", data.PageID,
		"lines", len(lines),
	)

	return nil
}

// SplitSnapshot turns raw snapshot text into page lines. Line numbers start
// at 1 and count every physical line; the indent is the leading whitespace
// width with tabs expanded to 4 columns. The stored text has the surrounding
// whitespace stripped.
func SplitSnapshot(pageID int64, text string) []common.Line {
	rawLines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	lines := make([]common.Line, 0, len(rawLines))
	for i, raw := range rawLines {
		lines = append(lines, common.Line{
			PageID: pageID,
			Num:    i + 1,
			Indent: leadingIndent(raw),
			Text:   strings.TrimSpace(raw),
			Label:  common.LabelUndefined,
		})
	}

	return lines
}

func leadingIndent(s string) int {
	indent := 0
	for _, r := range s {
		switch r {
		case ' ':
			indent++
		case '\t':
			indent += 4
		default:
			return indent
		}
	}
	return indent
}
