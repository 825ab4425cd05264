package store

import (
	"encoding/json"
	"fmt"

	"github.com/Cedric-Liu/3bros/internal/signal"
)

// SignalRecord is a persisted signal with its detection timestamp.
type SignalRecord struct {
	ID            int64    `json:"id"`
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	SignalType    string   `json:"signal_type"`
	PatternName   string   `json:"pattern_name"`
	Strength      float64  `json:"strength"`
	Price         float64  `json:"price"`
	Description   string   `json:"description"`
	Confirmations []string `json:"confirmations"`
	DetectedAt    string   `json:"detected_at"`
}

// SaveSignal appends a detected signal to the history.
func (s *Store) SaveSignal(sig signal.Signal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmations, err := json.Marshal(sig.Confirmations)
	if err != nil {
		return fmt.Errorf("encode confirmations: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO signal_history
		(code, name, signal_type, pattern_name, strength, price, description, confirmations)
		VALUES (?,?,?,?,?,?,?,?)`,
		sig.Code, sig.Name, sig.Polarity.Label(), sig.PatternName,
		sig.Strength, sig.Price, sig.Description, string(confirmations),
	)
	if err != nil {
		return fmt.Errorf("save signal: %w", err)
	}
	return nil
}

// SignalHistory returns signals from the last days days, newest first.
// An empty code returns signals for every symbol.
func (s *Store) SignalHistory(code string, days, limit int) ([]SignalRecord, error) {
	query := `
		SELECT id, code, name, signal_type, pattern_name, strength, price,
		       COALESCE(description, ''), COALESCE(confirmations, '[]'), detected_at
		FROM signal_history
		WHERE detected_at >= datetime('now', ?)`
	args := []interface{}{fmt.Sprintf("-%d days", days)}

	if code != "" {
		query += " AND code = ?"
		args = append(args, code)
	}
	query += " ORDER BY detected_at DESC LIMIT ?"
	args = append(args, limit)

	return s.querySignals(query, args...)
}

// TodaySignals returns signals detected today, strongest first.
func (s *Store) TodaySignals(code string) ([]SignalRecord, error) {
	query := `
		SELECT id, code, name, signal_type, pattern_name, strength, price,
		       COALESCE(description, ''), COALESCE(confirmations, '[]'), detected_at
		FROM signal_history
		WHERE date(detected_at) = date('now')`
	var args []interface{}
	if code != "" {
		query += " AND code = ?"
		args = append(args, code)
	}
	query += " ORDER BY strength DESC"

	return s.querySignals(query, args...)
}

func (s *Store) querySignals(query string, args ...interface{}) ([]SignalRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var records []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		var confirmations string
		if err := rows.Scan(&rec.ID, &rec.Code, &rec.Name, &rec.SignalType, &rec.PatternName,
			&rec.Strength, &rec.Price, &rec.Description, &confirmations, &rec.DetectedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(confirmations), &rec.Confirmations); err != nil {
			rec.Confirmations = nil
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
