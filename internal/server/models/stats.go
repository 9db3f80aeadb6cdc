package models

// Stats are aggregate counts over verified accounts.
type Stats struct {
	TotalUsers        int64
	TotalMessages     int64
	UsersWithMessages int64
	AcceptingUsers    int64
}
