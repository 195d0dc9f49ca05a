package database

import "time"

// Exchange is one journaled question/answer pair. The journal is written
// for auditing and never read back into prompts.
type Exchange struct {
	ID        uint      `db:"id"`
	CallerID  int64     `db:"caller_id"`
	Username  string    `db:"username"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	Fallback  bool      `db:"fallback"`
	CreatedAt time.Time `db:"created_at"`
}
