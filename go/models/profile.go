package models

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
	"gopkg.in/yaml.v3"
)

const ProfileFile = "profiles.yaml"

// Profile is a named register window, so users don't need to repeat the
// device path, window and widths on every invocation.
type Profile struct {
	Dev    string `yaml:"dev"`
	PCI    string `yaml:"pci"`
	BAR    *uint  `yaml:"bar"`
	Offset int64  `yaml:"offset"`
	Size   int64  `yaml:"size"`
	Word   uint   `yaml:"word"`
	Bulk   uint   `yaml:"bulk"`
	Endian string `yaml:"endian"`
	Sync   bool   `yaml:"sync"`
}

type Profiles struct {
	Profiles map[string]*Profile `yaml:"profiles"`
}

func ParseProfiles(data []byte) (*Profiles, error) {
	var p Profiles
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "failed to parse profiles")
	}
	for name, prof := range p.Profiles {
		if prof == nil {
			return nil, errors.Errorf("profile %s is empty", name)
		}
	}
	return &p, nil
}

func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read profiles")
	}
	p, err := ParseProfiles(data)
	return p, errors.Wrap(err, path)
}

// FindProfiles loads the first profiles.yaml found in the user or system
// config folders. It returns an empty set if there is none.
func FindProfiles() (*Profiles, error) {
	configDirs := configdir.New("regio", "profiles")
	for _, config := range configDirs.QueryFolders(configdir.All) {
		if data, err := config.ReadFile(ProfileFile); err == nil {
			p, err := ParseProfiles(data)
			return p, errors.Wrap(err, config.Path)
		}
	}
	return &Profiles{}, nil
}

func (p *Profiles) Get(name string) (*Profile, error) {
	if prof, ok := p.Profiles[name]; ok {
		return prof, nil
	}
	return nil, errors.Errorf("profile %s not found", name)
}

func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.Profiles))
	for name := range p.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies every field set in the profile into c.
func (p *Profile) Apply(c *Config) {
	if p.Dev != "" {
		c.Dev, c.PCI = p.Dev, ""
	}
	if p.PCI != "" {
		c.Dev, c.PCI = "", p.PCI
	}
	if p.BAR != nil {
		c.BAR = *p.BAR
	}
	if p.Offset != 0 {
		c.Offset = p.Offset
	}
	if p.Size != 0 {
		c.Size = p.Size
	}
	if p.Word != 0 {
		c.WordWidth = p.Word
	}
	if p.Bulk != 0 {
		c.BulkWidth = p.Bulk
	}
	if p.Endian != "" {
		c.Endian = p.Endian
	}
	if p.Sync {
		c.Sync = true
	}
}
