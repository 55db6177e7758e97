package database

// schema is applied at connect time. All statements are idempotent so the
// server can run it on every start.
const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	deadline TIMESTAMPTZ,
	estimated_minutes INTEGER NOT NULL DEFAULT 25,
	category TEXT NOT NULL DEFAULT 'general',
	source TEXT NOT NULL DEFAULT 'manual',
	source_id TEXT,
	priority_score INTEGER NOT NULL DEFAULT 0,
	priority_reason TEXT NOT NULL DEFAULT '',
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	started_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	time_spent_seconds INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	scheduled_date DATE NOT NULL DEFAULT CURRENT_DATE,
	rollover_count INTEGER NOT NULL DEFAULT 0,
	recurrence TEXT NOT NULL DEFAULT 'none'
);

-- Imported calendar events and emails are deduplicated at the store level.
CREATE UNIQUE INDEX IF NOT EXISTS tasks_source_source_id_idx
	ON tasks (source, source_id) WHERE source_id IS NOT NULL;

CREATE INDEX IF NOT EXISTS tasks_scheduled_date_idx ON tasks (scheduled_date) WHERE NOT completed;
CREATE INDEX IF NOT EXISTS tasks_completed_at_idx ON tasks (completed_at) WHERE completed;

CREATE TABLE IF NOT EXISTS pomodoro_sessions (
	id UUID PRIMARY KEY,
	task_id UUID NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
	session_type TEXT NOT NULL DEFAULT 'work',
	started_at TIMESTAMPTZ NOT NULL,
	ended_at TIMESTAMPTZ,
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	completed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS pomodoro_sessions_task_open_idx
	ON pomodoro_sessions (task_id) WHERE ended_at IS NULL;
CREATE INDEX IF NOT EXISTS pomodoro_sessions_started_at_idx ON pomodoro_sessions (started_at);

CREATE TABLE IF NOT EXISTS daily_plans (
	id UUID PRIMARY KEY,
	date DATE NOT NULL UNIQUE,
	task_ids JSONB NOT NULL DEFAULT '[]',
	prioritization_reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS settings (
	id TEXT PRIMARY KEY,
	pomodoro_work_minutes INTEGER NOT NULL DEFAULT 25,
	pomodoro_short_break INTEGER NOT NULL DEFAULT 5,
	pomodoro_long_break INTEGER NOT NULL DEFAULT 15,
	daily_task_limit INTEGER NOT NULL DEFAULT 4,
	auto_rollover BOOLEAN NOT NULL DEFAULT TRUE,
	dark_mode BOOLEAN NOT NULL DEFAULT FALSE,
	google_calendar_connected BOOLEAN NOT NULL DEFAULT FALSE,
	gmail_connected BOOLEAN NOT NULL DEFAULT FALSE,
	google_email TEXT NOT NULL DEFAULT '',
	google_token TEXT NOT NULL DEFAULT ''
);
`
