package store

import (
	"context"

	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// textSize forces Postgres to use TEXT instead of VARCHAR for long fields.
const textSize = 1 << 24

var (
	learnersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "name", Type: field.TypeString, Default: ""},
		{Name: "email", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	learnersTable = &schema.Table{
		Name:       "learners",
		Columns:    learnersColumns,
		PrimaryKey: []*schema.Column{learnersColumns[0]},
	}

	masteryColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "concept", Type: field.TypeString},
		{Name: "strength", Type: field.TypeFloat64},
		{Name: "easiness", Type: field.TypeFloat64},
		{Name: "interval_days", Type: field.TypeInt},
		{Name: "reviews", Type: field.TypeInt},
		{Name: "last_practiced", Type: field.TypeTime, Nullable: true},
		{Name: "next_due", Type: field.TypeTime, Nullable: true},
		{Name: "version", Type: field.TypeInt64, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	masteryTable = &schema.Table{
		Name:       "mastery",
		Columns:    masteryColumns,
		PrimaryKey: []*schema.Column{masteryColumns[0]},
		Indexes: []*schema.Index{
			{Name: "mastery_user_id_concept", Unique: true, Columns: []*schema.Column{masteryColumns[1], masteryColumns[2]}},
		},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "concept", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "type", Type: field.TypeString},
		{Name: "prompt", Type: field.TypeString, Size: textSize},
		{Name: "correct_option", Type: field.TypeString, Default: ""},
		{Name: "options", Type: field.TypeJSON, Nullable: true},
		{Name: "expected_answer", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "testcases", Type: field.TypeJSON, Nullable: true},
		{Name: "language_id", Type: field.TypeInt, Default: 0},
		{Name: "source", Type: field.TypeString, Default: "seed"},
		{Name: "created_at", Type: field.TypeTime},
	}
	questionsTable = &schema.Table{
		Name:       "questions",
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "questions_concept_difficulty", Columns: []*schema.Column{questionsColumns[1], questionsColumns[2]}},
		},
	}

	auditColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "evaluation_id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "concept", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "answer", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "source_code", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "quality", Type: field.TypeInt},
		{Name: "details", Type: field.TypeJSON, Nullable: true},
		{Name: "outcome", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	auditTable = &schema.Table{
		Name:       "audit_log",
		Columns:    auditColumns,
		PrimaryKey: []*schema.Column{auditColumns[0]},
		Indexes: []*schema.Index{
			{Name: "audit_log_sequence", Unique: true, Columns: []*schema.Column{auditColumns[1]}},
			{Name: "audit_log_user_id_concept", Columns: []*schema.Column{auditColumns[3], auditColumns[4]}},
		},
	}

	llmEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt},
		{Name: "output_tokens", Type: field.TypeInt},
		{Name: "latency_ms", Type: field.TypeInt64},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	llmEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    llmEventsColumns,
		PrimaryKey: []*schema.Column{llmEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llm_request_events_sequence", Unique: true, Columns: []*schema.Column{llmEventsColumns[1]}},
		},
	}

	tables = []*schema.Table{
		learnersTable,
		masteryTable,
		questionsTable,
		auditTable,
		llmEventsTable,
	}
)

// migrate creates or alters tables to match the declarations above.
func (s *Store) migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(s.drv, schema.WithForeignKeys(false))
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
