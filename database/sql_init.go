/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/uptrace/bun"
)

const (
	defaultSQLRootPath = "configs/sql"
	commonEnvironment  = "common"
	unorderedFile      = 999
)

var fileOrderPattern = regexp.MustCompile(`^(\d+)_`)

// SQLInitManager discovers and executes seed SQL files. Files under
// <root>/common run first, then <root>/environments/<env>; within a directory
// files run in the order of their numeric "NNN_" prefix. Applied files are
// recorded and skipped on later runs.
type SQLInitManager struct {
	db          *bun.DB
	environment string
	sqlRootPath string
	templating  bool
	logger      Logger
}

// SQLFileInfo describes a SQL file to be executed during initialization.
type SQLFileInfo struct {
	Path        string
	Name        string
	Order       int
	Environment string
	ModTime     time.Time
}

// ExecutionResult contains the outcome of executing a single SQL file.
type ExecutionResult struct {
	File         string
	Success      bool
	Skipped      bool
	Error        error
	Duration     time.Duration
	RowsAffected int64
}

// SQLInitRecord is a seed file that has been applied.
type SQLInitRecord struct {
	bun.BaseModel `bun:"table:sql_init_history"`

	File         string    `bun:"file,pk,type:varchar(255)"`
	Environment  string    `bun:"environment,type:varchar(64),notnull"`
	Checksum     string    `bun:"checksum,type:varchar(64),notnull"`
	RowsAffected int64     `bun:"rows_affected"`
	AppliedAt    time.Time `bun:"applied_at,notnull"`
}

// NewSQLInitManager creates a SQL initializer for the given environment.
func NewSQLInitManager(db *bun.DB, environment string) *SQLInitManager {
	return &SQLInitManager{
		db:          db,
		environment: environment,
		sqlRootPath: defaultSQLRootPath,
		logger:      GetLogger(),
	}
}

func (s *SQLInitManager) SetSQLRootPath(path string) {
	if path != "" {
		s.sqlRootPath = path
	}
}

func (s *SQLInitManager) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// EnableTemplating renders each file with text/template before execution.
// Environment variables are available by name, plus ENVIRONMENT and TIMESTAMP.
func (s *SQLInitManager) EnableTemplating(b bool) {
	s.templating = b
}

// ExecuteInitialization runs all pending SQL files, stopping at the first failure.
func (s *SQLInitManager) ExecuteInitialization(ctx context.Context) ([]ExecutionResult, error) {
	s.logger.Info("Starting SQL initialization", "environment", s.environment, "sql_path", s.sqlRootPath)

	if _, err := s.db.NewCreateTable().Model((*SQLInitRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to create sql init history table")
	}

	files, err := s.GetSQLFiles()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SQL files")
	}
	if len(files) == 0 {
		s.logger.Info("No SQL files found to execute")
		return nil, nil
	}

	results := make([]ExecutionResult, 0, len(files))
	for _, file := range files {
		result := s.executeFile(ctx, file)
		results = append(results, result)

		if !result.Success {
			s.logger.Error("SQL file execution failed", "file", result.File, "error", result.Error)
			return results, errors.Wrapf(result.Error, "SQL file execution failed %s", result.File)
		}
		if result.Skipped {
			s.logger.Debug("SQL file already applied", "file", result.File)
			continue
		}
		s.logger.Info("SQL file executed successfully",
			"file", result.File,
			"duration", result.Duration,
			"rows_affected", result.RowsAffected,
		)
	}

	s.logger.Info("SQL initialization completed", "total_files", len(results), "environment", s.environment)
	return results, nil
}

// GetSQLFiles returns the SQL files from the common and environment dirs in
// execution order. Missing directories contribute no files.
func (s *SQLInitManager) GetSQLFiles() ([]SQLFileInfo, error) {
	commonFiles, err := s.getFilesFromDir(filepath.Join(s.sqlRootPath, commonEnvironment), commonEnvironment)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get common SQL files")
	}
	envFiles, err := s.getFilesFromDir(filepath.Join(s.sqlRootPath, "environments", s.environment), s.environment)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get environment SQL files")
	}
	files := append(commonFiles, envFiles...)

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Environment != files[j].Environment {
			return files[i].Environment == commonEnvironment
		}
		if files[i].Order != files[j].Order {
			return files[i].Order < files[j].Order
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// GetExecutionHistory returns the applied seed files ordered by application time.
func (s *SQLInitManager) GetExecutionHistory(ctx context.Context) ([]SQLInitRecord, error) {
	records := make([]SQLInitRecord, 0)
	err := s.db.NewSelect().Model(&records).Order("applied_at ASC", "file ASC").Scan(ctx)
	return records, err
}

func (s *SQLInitManager) getFilesFromDir(dir, environment string) ([]SQLFileInfo, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	var files []SQLFileInfo
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, SQLFileInfo{
			Path:        path,
			Name:        d.Name(),
			Order:       parseFileOrder(d.Name()),
			Environment: environment,
			ModTime:     info.ModTime(),
		})
		return nil
	})
	return files, err
}

func parseFileOrder(filename string) int {
	matches := fileOrderPattern.FindStringSubmatch(filename)
	if len(matches) > 1 {
		if order, err := strconv.Atoi(matches[1]); err == nil {
			return order
		}
	}
	return unorderedFile
}

func (s *SQLInitManager) executeFile(ctx context.Context, file SQLFileInfo) (result ExecutionResult) {
	start := time.Now()
	result.File = file.Path
	defer func() { result.Duration = time.Since(start) }()

	raw, err := os.ReadFile(file.Path)
	if err != nil {
		result.Error = errors.Wrap(err, "failed to read file")
		return result
	}
	sum := sha256.Sum256(raw)
	checksum := hex.EncodeToString(sum[:])

	applied, err := s.db.NewSelect().Model((*SQLInitRecord)(nil)).Where("file = ?", file.Path).Exists(ctx)
	if err != nil {
		result.Error = err
		return result
	}
	if applied {
		result.Success, result.Skipped = true, true
		return result
	}

	content := string(raw)
	if s.templating {
		if content, err = s.replaceEnvVariables(content); err != nil {
			result.Error = err
			return result
		}
	}

	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var total int64
		for _, stmt := range splitSQLStatements(content) {
			res, execErr := tx.ExecContext(ctx, stmt)
			if execErr != nil {
				return errors.Wrapf(execErr, "failed to execute SQL statement: %s", stmt)
			}
			n, _ := res.RowsAffected()
			total += n
		}
		result.RowsAffected = total
		_, err := tx.NewInsert().Model(&SQLInitRecord{
			File:         file.Path,
			Environment:  file.Environment,
			Checksum:     checksum,
			RowsAffected: total,
			AppliedAt:    time.Now(),
		}).Exec(ctx)
		return err
	})
	if err != nil {
		result.Error = err
		return result
	}
	result.Success = true
	return result
}

func (s *SQLInitManager) replaceEnvVariables(content string) (string, error) {
	tmpl, err := template.New("sql").Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	envVars := make(map[string]string)
	for _, env := range os.Environ() {
		if k, v, ok := strings.Cut(env, "="); ok {
			envVars[k] = v
		}
	}
	envVars["ENVIRONMENT"] = s.environment
	envVars["TIMESTAMP"] = time.Now().Format("2006-01-02 15:04:05")

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, envVars); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}
	return buf.String(), nil
}

// splitSQLStatements splits on lines ending with ';'. Blank lines and
// "--" comment lines are dropped.
func splitSQLStatements(content string) []string {
	var statements []string
	var current strings.Builder

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString(" ")
		if strings.HasSuffix(line, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
