package store

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/quakeboard/internal/model"
	"github.com/sells-group/quakeboard/internal/query"
)

// viewsFile is the YAML document accepted by ImportViews:
//
//	views:
//	  - name: Nazca 2023
//	    spec:
//	      plates: [Nazca]
//	      year: 2023
type viewsFile struct {
	Views []struct {
		Name string           `yaml:"name"`
		Spec model.FilterSpec `yaml:"spec"`
	} `yaml:"views"`
}

// ImportViews seeds s from a YAML document. Views whose name already exists
// are skipped. Every spec is validated before anything is written.
func ImportViews(ctx context.Context, s Store, r io.Reader) (created, skipped int, err error) {
	var doc viewsFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return 0, 0, eris.Wrap(err, "store: decode views yaml")
	}

	seen := make(map[string]bool, len(doc.Views))
	for i, v := range doc.Views {
		if err := validateViewName(v.Name); err != nil {
			return 0, 0, eris.Wrapf(err, "store: view #%d", i+1)
		}
		if seen[v.Name] {
			return 0, 0, eris.Errorf("store: view %q listed twice", v.Name)
		}
		seen[v.Name] = true
		if err := query.Validate(v.Spec); err != nil {
			return 0, 0, eris.Wrapf(err, "store: view %q", v.Name)
		}
	}

	for _, v := range doc.Views {
		if _, err := s.CreateView(ctx, v.Name, v.Spec); err != nil {
			if IsDuplicateName(err) {
				zap.L().Debug("store: view exists, skipping", zap.String("name", v.Name))
				skipped++
				continue
			}
			return created, skipped, err
		}
		created++
	}

	zap.L().Info("store: imported views", zap.Int("created", created), zap.Int("skipped", skipped))
	return created, skipped, nil
}
