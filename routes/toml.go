package routes

import (
	"bytes"
	"fmt"
	"os"

	"github.com/MrEthical07/goGuard/permission"
	toml "github.com/pelletier/go-toml/v2"
)

type tomlFile struct {
	Routes []tomlRoute `toml:"route"`
}

type tomlRoute struct {
	Name  string   `toml:"name"`
	Path  string   `toml:"path"`
	Auth  bool     `toml:"auth"`
	Guest bool     `toml:"guest"`
	Roles []string `toml:"roles"`
}

// LoadTOML reads a route table from a file of [[route]] entries:
//
//	[[route]]
//	name  = "adminDashboard"
//	path  = "/admin/dashboard"
//	auth  = true
//	roles = ["admin"]
func LoadTOML(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read route file: %w", err)
	}
	return ParseTOML(data)
}

// ParseTOML decodes a route table document. Unknown fields and role names are rejected.
func ParseTOML(data []byte) (*Table, error) {
	var doc tomlFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode route file: %w", err)
	}

	dests := make([]Destination, 0, len(doc.Routes))
	for _, r := range doc.Routes {
		roles, err := permission.ParseRoleSet(r.Roles)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", r.Name, err)
		}
		dests = append(dests, Destination{
			Name: r.Name,
			Path: r.Path,
			Requirement: Requirement{
				RequiresAuth:  r.Auth,
				RequiresGuest: r.Guest,
				Roles:         roles,
			},
		})
	}
	return NewTable(dests...)
}
