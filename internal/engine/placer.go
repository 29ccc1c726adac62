package engine

import (
	"fmt"

	"github.com/piwi3910/HoleCut/internal/model"
)

// ClearanceFactor scales the run cross-section to the opening size.
const ClearanceFactor = 1.1

// SizeOpening returns the opening width and height for a cross-section.
// Circular runs get a square opening sized to the diameter.
func SizeOpening(cs model.CrossSection) (width, height float64) {
	if cs.Shape == model.SectionCircular {
		return cs.Diameter * ClearanceFactor, cs.Diameter * ClearanceFactor
	}
	return cs.Width * ClearanceFactor, cs.Height * ClearanceFactor
}

// ResolveLevel returns the level the wall is associated with.
func ResolveLevel(lookup ElementLookup, wallID string) (model.Level, error) {
	wall, err := lookup.Wall(wallID)
	if err != nil {
		return model.Level{}, fmt.Errorf("%w: %v", ErrUnresolvedLevel, err)
	}
	level, err := lookup.Level(wall.LevelID)
	if err != nil {
		return model.Level{}, fmt.Errorf("%w: wall %s: %v", ErrUnresolvedLevel, wallID, err)
	}
	return level, nil
}

// Placer creates sized openings inside an edit scope.
type Placer struct {
	scope       EditScope
	template    Template
	widthParam  string
	heightParam string
}

func NewPlacer(scope EditScope, template Template, widthParam, heightParam string) *Placer {
	return &Placer{
		scope:       scope,
		template:    template,
		widthParam:  widthParam,
		heightParam: heightParam,
	}
}

// Place instantiates the template on the hit wall at
// run.Origin + run.Direction*hit.Proximity and writes its size parameters.
func (p *Placer) Place(run model.Run, hit model.Hit, level model.Level, width, height float64) (model.Placement, error) {
	pos := run.PointAt(hit.Proximity)

	inst, err := p.scope.NewInstance(p.template, pos, hit.WallID, level.ID)
	if err != nil {
		return model.Placement{}, fmt.Errorf("failed to create opening: %w", err)
	}
	if err := inst.SetParameter(p.widthParam, width); err != nil {
		return model.Placement{}, fmt.Errorf("failed to set %q: %w", p.widthParam, err)
	}
	if err := inst.SetParameter(p.heightParam, height); err != nil {
		return model.Placement{}, fmt.Errorf("failed to set %q: %w", p.heightParam, err)
	}

	return model.Placement{
		OpeningID: inst.ID(),
		RunID:     run.ID,
		WallID:    hit.WallID,
		LevelID:   level.ID,
		Proximity: hit.Proximity,
		Position:  model.PointFromVec(pos),
		Width:     width,
		Height:    height,
	}, nil
}
