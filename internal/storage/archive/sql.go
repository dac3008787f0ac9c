package archive

const createTableSQL = `CREATE TABLE IF NOT EXISTS compass_headings (
	time timestamptz NOT NULL,
	heading double precision NOT NULL,
	cardinal text NOT NULL,
	mode text NOT NULL,
	meta jsonb
)`

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS timescaledb`

const createHypertableSQL = `SELECT create_hypertable('compass_headings', 'time', if_not_exists => TRUE)`
