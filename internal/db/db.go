package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"wishwell/internal/auth"
	"wishwell/internal/event"
	"wishwell/internal/jobs"
	"wishwell/internal/list"
	"wishwell/internal/message"
	"wishwell/internal/wish"
)

// Connect opens Postgres through database/sql (lib/pq) and hands the
// connection to gorm, so repository code sees typed pq errors.
func Connect(dsn string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&list.List{},
		&wish.Wish{},
		&wish.Contribution{},
		&message.Message{},
		&event.Event{},
		&event.Participant{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// The ledger's unit of contention is one (wish, gifter) row; the
	// composite primary key from AutoMigrate enforces the uniqueness, the
	// check below keeps a bad writer from ever persisting a negative stake.
	if err := gdb.Exec(`
do $$ begin
  alter table contributions add constraint ck_contributions_amount check (amount >= 0);
exception when duplicate_object then null;
end $$;
`).Error; err != nil {
		return err
	}

	stmts := []string{
		`create index if not exists idx_wishes_recipient_live on wishes(recipient_id, sort_order) where deleted_at is null;`,
		`create index if not exists idx_wishes_author on wishes(author_id);`,
		`create index if not exists idx_messages_list_created on messages(list_id, created_at);`,
		`create index if not exists idx_participants_list on participants(list_id);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
