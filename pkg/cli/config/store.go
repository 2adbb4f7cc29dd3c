package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/doowon-lab/dwportal/pkg/domain/interfaces"
	"github.com/doowon-lab/dwportal/pkg/domain/model"
	"github.com/doowon-lab/dwportal/pkg/domain/types"
	"github.com/doowon-lab/dwportal/pkg/repository/configfile"
	"github.com/doowon-lab/dwportal/pkg/repository/memory"
	"github.com/doowon-lab/dwportal/pkg/utils/logging"
)

// Store holds CLI flags for the field configuration store backend
type Store struct {
	backend   string
	path      string
	bootstrap string
}

// Flags returns CLI flags for store configuration
func (s *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Field config store backend (file or memory)",
			Value:       "file",
			Sources:     cli.EnvVars("DWPORTAL_STORE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "config-path",
			Usage:       "Path of the persisted field configuration JSON document",
			Value:       "field-configs.json",
			Sources:     cli.EnvVars("DWPORTAL_CONFIG_PATH"),
			Destination: &s.path,
		},
		&cli.StringFlag{
			Name:        "bootstrap-config",
			Usage:       "Optional TOML file overriding the built-in section defaults",
			Sources:     cli.EnvVars("DWPORTAL_BOOTSTRAP_CONFIG"),
			Destination: &s.bootstrap,
		},
	}
}

// Configure initializes the repository for the configured backend. The
// caller owns Close() on the returned repository.
func (s *Store) Configure(ctx context.Context) (interfaces.Repository, error) {
	defaults, err := s.defaults()
	if err != nil {
		return nil, err
	}

	switch s.backend {
	case "file":
		if s.path == "" {
			return nil, goerr.New("config-path is required when using file backend")
		}
		repo, err := configfile.New(s.path, configfile.WithDefaults(defaults))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize file store", goerr.V("path", s.path))
		}
		logging.Default().Info("Using file-backed config store", "path", s.path)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory config store (development mode)")
		return memory.NewWithDefaults(defaults), nil

	default:
		return nil, goerr.New("invalid store backend", goerr.V("backend", s.backend))
	}
}

// bootstrapDoc is the TOML shape of the optional defaults override
type bootstrapDoc struct {
	Sections []bootstrapSection `toml:"section"`
}

type bootstrapSection struct {
	ID        string           `toml:"id"`
	Title     string           `toml:"title"`
	TrackerID int              `toml:"tracker_id"`
	Fields    []bootstrapField `toml:"field"`
}

type bootstrapField struct {
	ID          int      `toml:"id"`
	Name        string   `toml:"name"`
	Key         string   `toml:"key"`
	Type        string   `toml:"type"`
	Required    bool     `toml:"required"`
	Readonly    bool     `toml:"readonly"`
	Options     []string `toml:"options"`
	ReferenceID int      `toml:"reference_id"`
}

// defaults returns the built-in section map, with any sections from the
// bootstrap TOML replacing the built-in ones.
func (s *Store) defaults() (*model.SectionMap, error) {
	defaults := model.DefaultSectionMap()
	if s.bootstrap == "" {
		return defaults, nil
	}

	data, err := os.ReadFile(s.bootstrap)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read bootstrap config", goerr.V("path", s.bootstrap))
	}

	var doc bootstrapDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, goerr.Wrap(ErrInvalidBootstrap, "bootstrap config is not valid TOML",
			goerr.V("path", s.bootstrap), goerr.V("cause", err.Error()))
	}

	for _, raw := range doc.Sections {
		section := types.Section(raw.ID)
		if !section.IsValid() {
			return nil, goerr.Wrap(ErrUnknownSection, "bootstrap config names an unknown section",
				goerr.V("path", s.bootstrap), goerr.V("section", raw.ID))
		}

		descriptors := make([]model.FieldDescriptor, 0, len(raw.Fields))
		for _, f := range raw.Fields {
			descriptors = append(descriptors, model.FieldDescriptor{
				ID:          f.ID,
				Name:        f.Name,
				ExternalKey: f.Key,
				Type:        types.FieldType(f.Type),
				Required:    f.Required,
				Readonly:    f.Readonly,
				Options:     f.Options,
				ReferenceID: f.ReferenceID,
			})
		}
		if err := model.ValidateDescriptors(descriptors); err != nil {
			return nil, goerr.Wrap(err, "invalid bootstrap section",
				goerr.V("path", s.bootstrap), goerr.V("section", raw.ID))
		}

		defaults.FieldConfigs[section] = descriptors
		if raw.Title != "" {
			defaults.SectionTitles[section] = raw.Title
		}
		if raw.TrackerID != 0 {
			defaults.TrackerIDs[section] = raw.TrackerID
		}
	}

	logging.Default().Info("Loaded bootstrap config", "path", s.bootstrap, "sections", len(doc.Sections))
	return defaults, nil
}
