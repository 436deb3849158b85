package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/MIUTEpxx/sqlengine/ast"
)

// yamlSchema is the on-disk shape for schema bootstrap/export: a table
// list a deployment can check in and hand to the CLI's --schema flag
// instead of re-typing CREATE TABLE statements every run.
type yamlSchema struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name    string       `yaml:"name"`
	Columns []yamlColumn `yaml:"columns"`
}

type yamlColumn struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Length     int    `yaml:"length,omitempty"`
	PrimaryKey bool   `yaml:"primary_key,omitempty"`
	NotNull    bool   `yaml:"not_null,omitempty"`
	Unique     bool   `yaml:"unique,omitempty"`
}

// LoadSchemaYAML parses a YAML table-list document into CREATE TABLE
// statements, ready to feed Catalog.CreateTable in order.
func LoadSchemaYAML(data []byte) ([]*ast.CreateTable, error) {
	var doc yamlSchema
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing schema yaml: %w", err)
	}
	stmts := make([]*ast.CreateTable, 0, len(doc.Tables))
	for _, t := range doc.Tables {
		cols := make([]*ast.ColumnDef, 0, len(t.Columns))
		for _, yc := range t.Columns {
			ct, err := parseYAMLType(yc)
			if err != nil {
				return nil, fmt.Errorf("table %q column %q: %w", t.Name, yc.Name, err)
			}
			var constraints []ast.Constraint
			if yc.PrimaryKey {
				constraints = append(constraints, ast.ConstraintPrimaryKey)
			}
			if yc.NotNull {
				constraints = append(constraints, ast.ConstraintNotNull)
			}
			if yc.Unique {
				constraints = append(constraints, ast.ConstraintUnique)
			}
			cols = append(cols, &ast.ColumnDef{Name: yc.Name, Type: ct, Constraints: constraints})
		}
		stmts = append(stmts, &ast.CreateTable{Name: t.Name, Columns: cols})
	}
	return stmts, nil
}

func parseYAMLType(yc yamlColumn) (ast.ColumnType, error) {
	switch yc.Type {
	case "INT", "int":
		return ast.ColumnType{Kind: ast.IntKind}, nil
	case "VARCHAR", "varchar":
		return ast.ColumnType{Kind: ast.VarcharKind, Length: yc.Length}, nil
	default:
		return ast.ColumnType{}, fmt.Errorf("unrecognized column type %q", yc.Type)
	}
}

// DumpSchemaYAML renders the catalog's current table definitions as a YAML
// document in the same shape LoadSchemaYAML accepts, so a running session
// can be snapshotted and replayed later.
func DumpSchemaYAML(c *Catalog) ([]byte, error) {
	doc := yamlSchema{}
	for _, info := range c.Tables() {
		yt := yamlTable{Name: info.Name}
		for _, col := range info.Columns {
			yc := yamlColumn{
				Name:       col.Name,
				Type:       col.Type.Kind.String(),
				Length:     col.Type.Length,
				PrimaryKey: col.PrimaryKey,
				NotNull:    col.NotNull && !col.PrimaryKey,
				Unique:     col.Unique,
			}
			yt.Columns = append(yt.Columns, yc)
		}
		doc.Tables = append(doc.Tables, yt)
	}
	return yaml.Marshal(doc)
}
