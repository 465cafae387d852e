package entities

import "time"

// Item is a warehouse inventory row. The auction and randomizer only touch
// quantity through the inventory service.
type Item struct {
	ID        int64     `db:"id"`
	ClanID    int64     `db:"clan_id"`
	Name      string    `db:"name"`
	Quantity  int64     `db:"quantity"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HasStock reports whether at least n units are available.
func (i *Item) HasStock(n int64) bool {
	return i.Quantity >= n
}
