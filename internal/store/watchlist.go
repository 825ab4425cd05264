package store

import (
	"database/sql"
	"fmt"
)

const (
	tableWatchlist    = "watchlist"
	tableETFWatchlist = "etf_watchlist"
)

// WatchItem is one watchlist entry. Buy fields are nil until the user
// records a position.
type WatchItem struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	AddedAt     string   `json:"added_at"`
	SortOrder   int      `json:"sort_order"`
	Notes       string   `json:"notes"`
	BuyPrice    *float64 `json:"buy_price,omitempty"`
	BuyDate     *string  `json:"buy_date,omitempty"`
	BuyQuantity *int     `json:"buy_quantity,omitempty"`
}

func (s *Store) addWatch(table, code, name, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxOrder sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(sort_order) FROM " + table).Scan(&maxOrder); err != nil {
		return fmt.Errorf("max sort_order: %w", err)
	}

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO "+table+" (code, name, sort_order, notes) VALUES (?,?,?,?)",
		code, name, maxOrder.Int64+1, notes,
	)
	if err != nil {
		return fmt.Errorf("add to %s: %w", table, err)
	}
	return nil
}

func (s *Store) removeWatch(table, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM "+table+" WHERE code = ?", code)
	if err != nil {
		return fmt.Errorf("remove from %s: %w", table, err)
	}
	return nil
}

func (s *Store) inWatch(table, code string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM "+table+" WHERE code = ?", code).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) listWatch(table string) ([]WatchItem, error) {
	rows, err := s.db.Query(
		"SELECT code, name, added_at, sort_order, COALESCE(notes, '') FROM " + table +
			" ORDER BY sort_order DESC")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var items []WatchItem
	for rows.Next() {
		var it WatchItem
		if err := rows.Scan(&it.Code, &it.Name, &it.AddedAt, &it.SortOrder, &it.Notes); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddWatch adds a stock to the watchlist, appending it at the top of the
// sort order. Re-adding an existing code replaces the row.
func (s *Store) AddWatch(code, name, notes string) error {
	return s.addWatch(tableWatchlist, code, name, notes)
}

// RemoveWatch deletes a stock from the watchlist.
func (s *Store) RemoveWatch(code string) error {
	return s.removeWatch(tableWatchlist, code)
}

// InWatchlist reports whether the code is tracked.
func (s *Store) InWatchlist(code string) (bool, error) {
	return s.inWatch(tableWatchlist, code)
}

// Watchlist returns all tracked stocks with buy info, newest first.
func (s *Store) Watchlist() ([]WatchItem, error) {
	rows, err := s.db.Query(`
		SELECT code, name, added_at, sort_order, COALESCE(notes, ''),
		       buy_price, buy_date, buy_quantity
		FROM watchlist ORDER BY sort_order DESC`)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var items []WatchItem
	for rows.Next() {
		var it WatchItem
		if err := rows.Scan(&it.Code, &it.Name, &it.AddedAt, &it.SortOrder, &it.Notes,
			&it.BuyPrice, &it.BuyDate, &it.BuyQuantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateWatchOrder moves a stock to the given sort position.
func (s *Store) UpdateWatchOrder(code string, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE watchlist SET sort_order = ? WHERE code = ?", order, code)
	return err
}

// UpdateBuyInfo records the user's position for a tracked stock. Nil
// fields are left unchanged.
func (s *Store) UpdateBuyInfo(code string, price *float64, date *string, quantity *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := ""
	var args []interface{}
	if price != nil {
		set += "buy_price = ?"
		args = append(args, *price)
	}
	if date != nil {
		if set != "" {
			set += ", "
		}
		set += "buy_date = ?"
		args = append(args, *date)
	}
	if quantity != nil {
		if set != "" {
			set += ", "
		}
		set += "buy_quantity = ?"
		args = append(args, *quantity)
	}
	if set == "" {
		return nil
	}
	args = append(args, code)

	_, err := s.db.Exec("UPDATE watchlist SET "+set+" WHERE code = ?", args...)
	if err != nil {
		return fmt.Errorf("update buy info: %w", err)
	}
	return nil
}

// AddETF adds an ETF to the ETF watchlist.
func (s *Store) AddETF(code, name, notes string) error {
	return s.addWatch(tableETFWatchlist, code, name, notes)
}

// RemoveETF deletes an ETF from the ETF watchlist.
func (s *Store) RemoveETF(code string) error {
	return s.removeWatch(tableETFWatchlist, code)
}

// InETFWatchlist reports whether the ETF code is tracked.
func (s *Store) InETFWatchlist(code string) (bool, error) {
	return s.inWatch(tableETFWatchlist, code)
}

// ETFWatchlist returns all tracked ETFs, newest first.
func (s *Store) ETFWatchlist() ([]WatchItem, error) {
	return s.listWatch(tableETFWatchlist)
}
