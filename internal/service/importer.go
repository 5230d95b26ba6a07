package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/repository"
	"github.com/lunnlew/m3u-filter/pkg/m3u"
	"github.com/lunnlew/m3u-filter/pkg/txt"
)

// ImportResult summarizes a playlist import.
type ImportResult struct {
	// SourceID is the source the tracks were imported into.
	SourceID models.ULID `json:"source_id"`

	// TracksImported is the number of tracks written.
	TracksImported int `json:"tracks_imported"`

	// LinesSkipped is the number of malformed entries skipped.
	LinesSkipped int `json:"lines_skipped"`
}

// Importer loads playlists and definition files into storage.
type Importer struct {
	sources   repository.StreamSourceRepository
	tracks    repository.TrackRepository
	sortTpls  repository.SortTemplateRepository
	mapTpls   repository.GroupMappingTemplateRepository
	batchSize int
	logger    *slog.Logger
}

// NewImporter creates a new Importer.
func NewImporter(
	sources repository.StreamSourceRepository,
	tracks repository.TrackRepository,
	sortTpls repository.SortTemplateRepository,
	mapTpls repository.GroupMappingTemplateRepository,
	batchSize int,
	logger *slog.Logger,
) *Importer {
	if batchSize < 1 {
		batchSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		sources:   sources,
		tracks:    tracks,
		sortTpls:  sortTpls,
		mapTpls:   mapTpls,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ImportPlaylist replaces a source's tracks with the entries read from r.
// The reader may carry gzip, bzip2 or xz compressed data; the format is
// selected by the source type.
func (i *Importer) ImportPlaylist(ctx context.Context, source *models.StreamSource, r io.Reader) (*ImportResult, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}

	result := &ImportResult{SourceID: source.ID}
	var pending []*models.Track

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := i.tracks.CreateBatch(ctx, pending); err != nil {
			return fmt.Errorf("writing track batch: %w", err)
		}
		result.TracksImported += len(pending)
		pending = pending[:0]
		return nil
	}

	add := func(t *models.Track) error {
		pending = append(pending, t)
		if len(pending) >= i.batchSize {
			return flush()
		}
		return nil
	}

	// Replace semantics: the previous sync's tracks go away with it.
	if err := i.tracks.DeleteBySourceID(ctx, source.ID); err != nil {
		return nil, fmt.Errorf("clearing source tracks: %w", err)
	}

	onError := func(lineNum int, err error) {
		result.LinesSkipped++
		i.logger.Warn("skipping malformed playlist line",
			slog.String("source", source.Name),
			slog.Int("line", lineNum),
			slog.String("error", err.Error()),
		)
	}

	var parseErr error
	switch source.Type {
	case models.StreamSourceTypeTXT:
		parser := &txt.Parser{
			OnEntry: func(entry *txt.Entry) error {
				return add(&models.Track{
					SourceID:   source.ID,
					Name:       entry.Name,
					StreamURL:  entry.URL,
					GroupTitle: entry.Group,
				})
			},
			OnError: onError,
		}
		parseErr = parser.Parse(r)
	default:
		parser := &m3u.Parser{
			OnEntry: func(entry *m3u.Entry) error {
				if entry.Title == "" || entry.URL == "" {
					result.LinesSkipped++
					return nil
				}
				return add(&models.Track{
					SourceID:      source.ID,
					Name:          entry.Title,
					StreamURL:     entry.URL,
					GroupTitle:    entry.GroupTitle,
					TvgID:         entry.TvgID,
					TvgName:       entry.TvgName,
					TvgLogo:       entry.TvgLogo,
					Language:      entry.TvgLanguage,
					Catchup:       entry.Catchup,
					CatchupSource: entry.CatchupSource,
				})
			},
			OnError: onError,
		}
		parseErr = parser.ParseCompressed(r)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("parsing playlist: %w", parseErr)
	}

	if err := flush(); err != nil {
		return nil, err
	}

	if err := i.sources.UpdateLastSync(ctx, source.ID); err != nil {
		return nil, fmt.Errorf("updating sync time: %w", err)
	}

	i.logger.Info("playlist imported",
		slog.String("source", source.Name),
		slog.Int("tracks", result.TracksImported),
		slog.Int("skipped", result.LinesSkipped),
	)
	return result, nil
}

// sortTemplateDoc is the YAML shape of a sort template definition.
type sortTemplateDoc struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Groups      []struct {
		Group    string   `yaml:"group"`
		Channels []string `yaml:"channels"`
	} `yaml:"groups"`
}

// mappingTemplateDoc is the YAML shape of a group mapping template.
type mappingTemplateDoc struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Mappings    []struct {
		Channel     string `yaml:"channel"`
		Group       string `yaml:"group"`
		DisplayName string `yaml:"display_name"`
	} `yaml:"mappings"`
}

// templateFile is a YAML document holding template definitions of both
// kinds. Either section may be omitted.
type templateFile struct {
	SortTemplates    []sortTemplateDoc    `yaml:"sort_templates"`
	MappingTemplates []mappingTemplateDoc `yaml:"mapping_templates"`
}

// ImportTemplates reads sort template and mapping template definitions from
// a YAML document and stores them. Returns the number of templates created.
func (i *Importer) ImportTemplates(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("reading template file: %w", err)
	}

	var doc templateFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parsing template file: %w", err)
	}

	created := 0
	for _, st := range doc.SortTemplates {
		orders := make(models.GroupOrders, 0, len(st.Groups))
		for _, g := range st.Groups {
			orders = append(orders, models.GroupOrder{
				Group:    g.Group,
				Channels: g.Channels,
			})
		}
		template := &models.SortTemplate{
			Name:        st.Name,
			Description: st.Description,
			GroupOrders: orders,
		}
		if err := i.sortTpls.Create(ctx, template); err != nil {
			return created, fmt.Errorf("creating sort template %q: %w", st.Name, err)
		}
		created++
	}

	for _, mt := range doc.MappingTemplates {
		items := make([]models.GroupMappingTemplateItem, 0, len(mt.Mappings))
		for pos, m := range mt.Mappings {
			items = append(items, models.GroupMappingTemplateItem{
				ChannelName: m.Channel,
				CustomGroup: m.Group,
				DisplayName: m.DisplayName,
				Position:    pos,
			})
		}
		template := &models.GroupMappingTemplate{
			Name:        mt.Name,
			Description: mt.Description,
			Items:       items,
		}
		if err := i.mapTpls.Create(ctx, template); err != nil {
			return created, fmt.Errorf("creating mapping template %q: %w", mt.Name, err)
		}
		created++
	}

	i.logger.Info("templates imported", slog.Int("count", created))
	return created, nil
}
