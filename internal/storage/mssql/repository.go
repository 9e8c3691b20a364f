package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"linkedin-jobs-scraper/internal/checksum"
	"linkedin-jobs-scraper/internal/observability"
	"linkedin-jobs-scraper/internal/scraper"
	"linkedin-jobs-scraper/internal/storage"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type Repository struct {
	db             *sql.DB
	table          string
	commandTimeout time.Duration
	checksum       *checksum.Generator
	logger         *observability.Logger
}

var _ storage.Sink = (*Repository)(nil)

func NewRepository(dsn, table string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		table:          table,
		commandTimeout: commandTimeout,
		checksum:       checksum.NewGenerator(),
		logger:         logger,
	}, nil
}

// upsertQuery keys rows on ListingKey: the canonical URL, or the content hash for
// listings without one. Unchanged rows are left alone and produce no OUTPUT row.
func upsertQuery(table string) string {
	return fmt.Sprintf(`
		MERGE INTO %s AS target
		USING (SELECT @ListingKey AS ListingKey) AS source
		ON target.[ListingKey] = source.ListingKey
		WHEN MATCHED AND target.[CheckSum] <> @CheckSum THEN
			UPDATE SET
				[ExternalID] = @ExternalID,
				[Title] = @Title,
				[Company] = @Company,
				[Location] = @Location,
				[PostedDate] = @PostedDate,
				[PostedAt] = @PostedAt,
				[CompanyURL] = @CompanyURL,
				[ScrapedAt] = @ScrapedAt,
				[CheckSum] = @CheckSum
		WHEN NOT MATCHED THEN
			INSERT ([ListingKey], [ExternalID], [Title], [Company], [Location], [PostedDate], [PostedAt], [URL], [CompanyURL], [ScrapedAt], [CheckSum])
			VALUES (@ListingKey, @ExternalID, @Title, @Company, @Location, @PostedDate, @PostedAt, @URL, @CompanyURL, @ScrapedAt, @CheckSum)
		OUTPUT $action;
	`, table)
}

// listingArgs maps a record to the statement's named parameters.
func (r *Repository) listingArgs(rec *scraper.ListingRecord) []any {
	sum := r.checksum.ListingHash(checksum.Fields{
		URL:        rec.URL,
		Title:      rec.Title,
		Company:    rec.Company,
		Location:   rec.Location,
		PostedDate: rec.PostedDate,
	})

	key := rec.URL
	if key == "" {
		key = "hash:" + sum
	}

	var postedAt sql.NullString
	if rec.PostedAt != "" {
		postedAt = sql.NullString{String: rec.PostedAt, Valid: true}
	}
	var companyURL sql.NullString
	if rec.CompanyURL != "" {
		companyURL = sql.NullString{String: rec.CompanyURL, Valid: true}
	}

	return []any{
		sql.Named("ListingKey", key),
		sql.Named("ExternalID", rec.ID),
		sql.Named("Title", rec.Title),
		sql.Named("Company", rec.Company),
		sql.Named("Location", rec.Location),
		sql.Named("PostedDate", rec.PostedDate),
		sql.Named("PostedAt", postedAt),
		sql.Named("URL", rec.URL),
		sql.Named("CompanyURL", companyURL),
		sql.Named("ScrapedAt", rec.ScrapedAt),
		sql.Named("CheckSum", sum),
	}
}

// Save upserts the batch in one transaction.
func (r *Repository) Save(ctx context.Context, batch storage.Batch) (res storage.SaveResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.Error("Failed to roll back", "error", rbErr.Error())
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertQuery(r.table))
	if err != nil {
		return res, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	for i := range batch.Records {
		rec := &batch.Records[i]

		var action string
		err = stmt.QueryRowContext(ctx, r.listingArgs(rec)...).Scan(&action)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			err = nil
			res.Unchanged++
		case err != nil:
			return res, fmt.Errorf("failed to upsert listing %s: %w", rec.ID, err)
		case action == "INSERT":
			res.Inserted++
		default:
			res.Updated++
		}
	}

	if err = tx.Commit(); err != nil {
		return res, fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Debug("Batch stored",
		"source", batch.SourceURL,
		"inserted", res.Inserted,
		"updated", res.Updated,
		"unchanged", res.Unchanged,
	)
	return res, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
