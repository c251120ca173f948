package state

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/tablook/pkg/core"
)

// SaveFindings replaces the findings of a run, keeping their order.
func (s *SQLiteStore) SaveFindings(ctx context.Context, runID string, findings []core.Finding) (err error) {
	if s.db == nil {
		return ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM findings WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("failed to clear findings: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO findings (run_id, position, rule, kind, severity, datasource_id, entity, entity_id, message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range findings {
		if _, err = stmt.ExecContext(ctx, runID, i, f.Rule, string(f.Kind), f.Severity.String(),
			f.DatasourceID, f.Entity, f.EntityID, f.Message); err != nil {
			return fmt.Errorf("failed to save finding %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit findings: %w", err)
	}
	return nil
}

// ListFindings returns the findings of a run in their saved order.
func (s *SQLiteStore) ListFindings(ctx context.Context, runID string) ([]core.Finding, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rule, kind, severity, datasource_id, entity, entity_id, message
		 FROM findings WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	findings := []core.Finding{}
	for rows.Next() {
		var (
			f        core.Finding
			kind     string
			severity string
		)
		if err := rows.Scan(&f.Rule, &kind, &severity, &f.DatasourceID, &f.Entity, &f.EntityID, &f.Message); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Kind = core.FindingKind(kind)
		sev, ok := core.ParseSeverity(severity)
		if !ok {
			return nil, fmt.Errorf("finding has unknown severity %q", severity)
		}
		f.Severity = sev
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	return findings, nil
}
