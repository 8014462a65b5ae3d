package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_properties",
		SQL: `CREATE TABLE IF NOT EXISTS properties (
  id                 BIGSERIAL   PRIMARY KEY,
  name               TEXT        NOT NULL,
  sdk_folder_id      BIGINT      NOT NULL DEFAULT 0,
  sdk_site_id        BIGINT      NOT NULL DEFAULT 0,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by_user_id BIGINT      NOT NULL DEFAULT 0,
  updated_by_user_id BIGINT      NOT NULL DEFAULT 0,
  workflow_state     TEXT        NOT NULL DEFAULT 'created'
);`,
	},
	{
		Name: "create_table_folders",
		SQL: `CREATE TABLE IF NOT EXISTS folders (
  id                 BIGSERIAL   PRIMARY KEY,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by_user_id BIGINT      NOT NULL DEFAULT 0,
  updated_by_user_id BIGINT      NOT NULL DEFAULT 0,
  workflow_state     TEXT        NOT NULL DEFAULT 'created'
);`,
	},
	{
		Name: "create_table_folder_translations",
		SQL: `CREATE TABLE IF NOT EXISTS folder_translations (
  id                 BIGSERIAL   PRIMARY KEY,
  folder_id          BIGINT      NOT NULL REFERENCES folders (id),
  language_id        BIGINT      NOT NULL,
  name               TEXT        NOT NULL DEFAULT '',
  description        TEXT        NOT NULL DEFAULT '',
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by_user_id BIGINT      NOT NULL DEFAULT 0,
  updated_by_user_id BIGINT      NOT NULL DEFAULT 0,
  workflow_state     TEXT        NOT NULL DEFAULT 'created'
);`,
	},
	{
		Name: "create_table_folder_properties",
		SQL: `CREATE TABLE IF NOT EXISTS folder_properties (
  id                 BIGSERIAL   PRIMARY KEY,
  folder_id          BIGINT      NOT NULL REFERENCES folders (id),
  property_id        BIGINT      NOT NULL REFERENCES properties (id),
  sdk_folder_id      BIGINT      NOT NULL DEFAULT 0,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by_user_id BIGINT      NOT NULL DEFAULT 0,
  updated_by_user_id BIGINT      NOT NULL DEFAULT 0,
  workflow_state     TEXT        NOT NULL DEFAULT 'created'
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                 BIGSERIAL   PRIMARY KEY,
  start_at           TIMESTAMPTZ NOT NULL,
  end_at             TIMESTAMPTZ NOT NULL,
  folder_id          BIGINT      NOT NULL REFERENCES folders (id),
  status             BOOLEAN     NOT NULL DEFAULT FALSE,
  is_locked          BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by_user_id BIGINT      NOT NULL DEFAULT 0,
  updated_by_user_id BIGINT      NOT NULL DEFAULT 0,
  workflow_state     TEXT        NOT NULL DEFAULT 'created'
);`,
	},
	{
		Name: "create_table_document_translations",
		SQL: `CREATE TABLE IF NOT EXISTS document_translations (
  id                 BIGSERIAL   PRIMARY KEY,
  document_id        BIGINT      NOT NULL REFERENCES documents (id),
  language_id        BIGINT      NOT NULL,
  name               TEXT        NOT NULL DEFAULT '',
  description        TEXT        NOT NULL DEFAULT '',
  extension_file     TEXT        NOT NULL DEFAULT '',
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by_user_id BIGINT      NOT NULL DEFAULT 0,
  updated_by_user_id BIGINT      NOT NULL DEFAULT 0,
  workflow_state     TEXT        NOT NULL DEFAULT 'created'
);`,
	},
	{
		Name: "create_table_document_uploaded_datas",
		SQL: `CREATE TABLE IF NOT EXISTS document_uploaded_datas (
  id                 BIGSERIAL   PRIMARY KEY,
  document_id        BIGINT      NOT NULL REFERENCES documents (id),
  language_id        BIGINT      NOT NULL,
  extension          TEXT        NOT NULL DEFAULT '',
  name               TEXT        NOT NULL DEFAULT '',
  file               TEXT        NOT NULL DEFAULT '',
  hash               TEXT        NOT NULL DEFAULT '',
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by_user_id BIGINT      NOT NULL DEFAULT 0,
  updated_by_user_id BIGINT      NOT NULL DEFAULT 0,
  workflow_state     TEXT        NOT NULL DEFAULT 'created'
);`,
	},
	{
		Name: "create_table_document_properties",
		SQL: `CREATE TABLE IF NOT EXISTS document_properties (
  id                 BIGSERIAL   PRIMARY KEY,
  document_id        BIGINT      NOT NULL REFERENCES documents (id),
  property_id        BIGINT      NOT NULL REFERENCES properties (id),
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by_user_id BIGINT      NOT NULL DEFAULT 0,
  updated_by_user_id BIGINT      NOT NULL DEFAULT 0,
  workflow_state     TEXT        NOT NULL DEFAULT 'created'
);`,
	},
	{
		Name: "create_table_document_sites",
		SQL: `CREATE TABLE IF NOT EXISTS document_sites (
  id                 BIGSERIAL   PRIMARY KEY,
  document_id        BIGINT      NOT NULL REFERENCES documents (id),
  property_id        BIGINT      NOT NULL REFERENCES properties (id),
  sdk_site_id        BIGINT      NOT NULL DEFAULT 0,
  sdk_case_id        BIGINT      NOT NULL DEFAULT 0,
  created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by_user_id BIGINT      NOT NULL DEFAULT 0,
  updated_by_user_id BIGINT      NOT NULL DEFAULT 0,
  workflow_state     TEXT        NOT NULL DEFAULT 'created'
);`,
	},
	{
		Name: "create_index_documents_folder_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_folder_id ON documents (folder_id);`,
	},
	{
		Name: "create_index_documents_workflow_state",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_workflow_state ON documents (workflow_state);`,
	},
	{
		Name: "create_index_documents_end_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_end_at ON documents (end_at);`,
	},
	{
		Name: "create_index_document_translations_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_translations_document_id ON document_translations (document_id);`,
	},
	{
		Name: "create_index_document_uploaded_datas_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_uploaded_datas_document_id ON document_uploaded_datas (document_id);`,
	},
	{
		Name: "create_index_document_properties_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_properties_document_id ON document_properties (document_id);`,
	},
	{
		Name: "create_index_document_properties_property_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_properties_property_id ON document_properties (property_id);`,
	},
	{
		Name: "create_index_document_sites_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_document_sites_document_id ON document_sites (document_id);`,
	},
	{
		Name: "create_index_folder_translations_folder_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_folder_translations_folder_id ON folder_translations (folder_id);`,
	},
	{
		Name: "create_index_folder_properties_folder_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_folder_properties_folder_id ON folder_properties (folder_id);`,
	},
}

// EnsureMigrated checks if the 'documents' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.documents') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
