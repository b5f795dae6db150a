// Package schema defines the database schema for development.
//
// DEVELOPMENT USE ONLY
// This file contains the current database schema and is used for development and testing.
// Before deploying to production, these table definitions should be converted to proper migrations.
package schema

// TableDefinitions contains all the SQL statements to create the database
// tables, in dependency order. Cascade rules live here: deleting a project
// removes its environments, and deleting an environment removes its users,
// configs, templates, domains, tokens and data rows.
//
// Every statement must be re-runnable: the full list executes on each boot
// against an existing database. CREATE statements use IF NOT EXISTS and the
// users constraints (added after environments and roles exist) swallow
// duplicate_object.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		full_name VARCHAR(255),
		password_hash VARCHAR(255),
		environment_id UUID,
		role_id UUID,
		last_sign_in TIMESTAMP,
		email_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
		profile_picture TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_subscriptions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE ON UPDATE CASCADE,
		external_id VARCHAR(255) UNIQUE NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		app_name VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		main BOOLEAN NOT NULL DEFAULT FALSE,
		user_owner_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE ON UPDATE CASCADE,
		subscription_id UUID REFERENCES user_subscriptions (id) ON DELETE SET NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS environments (
		id UUID PRIMARY KEY,
		project_id UUID NOT NULL REFERENCES projects (id) ON DELETE CASCADE ON UPDATE CASCADE,
		name VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		public_key VARCHAR(255) UNIQUE NOT NULL,
		secret_key VARCHAR(255) UNIQUE NOT NULL,
		token_expiration BIGINT NOT NULL,
		refresh_token_expiration BIGINT NOT NULL,
		app_url TEXT,
		auth_provider VARCHAR(30) NOT NULL,
		custom_domain VARCHAR(255),
		custom_domain_txt VARCHAR(255),
		custom_domain_status VARCHAR(20),
		custom_domain_txt_status VARCHAR(20),
		custom_domain_last_checked TIMESTAMP,
		custom_domain_verified_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`DO $$ BEGIN
		ALTER TABLE users ADD CONSTRAINT fk_users_environment
			FOREIGN KEY (environment_id) REFERENCES environments (id) ON DELETE CASCADE ON UPDATE CASCADE;
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE TABLE IF NOT EXISTS roles (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		"default" BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`DO $$ BEGIN
		ALTER TABLE users ADD CONSTRAINT fk_users_role
			FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE SET NULL;
	EXCEPTION WHEN duplicate_object THEN NULL;
	END $$`,
	`CREATE TABLE IF NOT EXISTS custom_fields (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		type VARCHAR(20) NOT NULL,
		relation VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS project_configs (
		environment_id UUID NOT NULL REFERENCES environments (id) ON DELETE CASCADE ON UPDATE CASCADE,
		project_id UUID NOT NULL REFERENCES projects (id) ON DELETE CASCADE ON UPDATE CASCADE,
		relation_id UUID NOT NULL,
		relation_kind VARCHAR(20) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (environment_id, project_id)
	)`,
	`CREATE TABLE IF NOT EXISTS email_templates (
		id UUID PRIMARY KEY,
		environment_id UUID NOT NULL REFERENCES environments (id) ON DELETE CASCADE ON UPDATE CASCADE,
		kind VARCHAR(30) NOT NULL,
		name VARCHAR(255) NOT NULL,
		subject TEXT NOT NULL,
		from_name TEXT,
		from_email VARCHAR(255) NOT NULL,
		reply_to VARCHAR(255),
		content TEXT NOT NULL,
		preview TEXT,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (environment_id, kind)
	)`,
	`CREATE TABLE IF NOT EXISTS email_domains (
		id UUID PRIMARY KEY,
		environment_id UUID NOT NULL REFERENCES environments (id) ON DELETE CASCADE ON UPDATE CASCADE,
		external_id VARCHAR(255) UNIQUE NOT NULL,
		domain VARCHAR(255) UNIQUE NOT NULL,
		status VARCHAR(50) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		token VARCHAR(255) PRIMARY KEY,
		type VARCHAR(30) NOT NULL,
		relation_id VARCHAR(255) NOT NULL,
		environment_id UUID REFERENCES environments (id) ON DELETE CASCADE ON UPDATE CASCADE,
		expires TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS environment_data (
		id VARCHAR(255) NOT NULL,
		environment_id UUID NOT NULL REFERENCES environments (id) ON DELETE CASCADE ON UPDATE CASCADE,
		value JSONB,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (environment_id, id)
	)`,
}

// TableNames returns a list of all table names in creation order
var TableNames = []string{
	"users",
	"user_subscriptions",
	"projects",
	"environments",
	"roles",
	"custom_fields",
	"project_configs",
	"email_templates",
	"email_domains",
	"tokens",
	"environment_data",
}
