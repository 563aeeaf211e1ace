package cratemap

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/cratemap/cratemap/internal/log"
	"github.com/cratemap/cratemap/resolve"
	"github.com/cratemap/cratemap/resolve/testfixture"
)

// progressLogger adapts Ctx's logger to resolve.ProgressToken, when the
// config asks for verbose output.
type progressLogger struct {
	logger *log.Logger
}

func (p *progressLogger) Tick(stage string) {
	p.logger.Stage("progress: %s", stage)
}

// Driver loads a directory of testfixture crate-spec YAML files and builds
// them into resolve.CrateDefMaps, dependencies first.
//
// Grounded on the teacher's dep.Ctx.LoadProject + Solve pairing: load
// declared inputs from disk, resolve them in dependency order, hand back
// the built result.
type Driver struct {
	ctx *Ctx
	dir string

	built map[int32]*resolve.CrateDefMap
	specs map[string]*testfixture.CrateSpec
}

// NewDriver returns a Driver rooted at dir, using ctx's logger and config.
func NewDriver(ctx *Ctx, dir string) *Driver {
	return &Driver{
		ctx:   ctx,
		dir:   dir,
		built: make(map[int32]*resolve.CrateDefMap),
		specs: make(map[string]*testfixture.CrateSpec),
	}
}

// Build loads rootFile (relative to the driver's directory) and every
// dependency spec file it transitively names, building each exactly once
// in dependency order, and returns the root crate's finished CrateDefMap.
func (d *Driver) Build(ctx context.Context, rootFile string) (*resolve.CrateDefMap, error) {
	spec, err := d.loadSpec(rootFile)
	if err != nil {
		return nil, err
	}
	return d.buildSpec(ctx, rootFile, spec, make(map[string]bool))
}

func (d *Driver) loadSpec(file string) (*testfixture.CrateSpec, error) {
	if spec, ok := d.specs[file]; ok {
		return spec, nil
	}
	data, err := os.ReadFile(filepath.Join(d.dir, file))
	if err != nil {
		return nil, errors.Wrapf(err, "reading crate spec %s", file)
	}
	spec, err := testfixture.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing crate spec %s", file)
	}
	if spec.Edition == "" {
		spec.Edition = d.ctx.Config.DefaultEdition
	}
	d.specs[file] = spec
	return spec, nil
}

func (d *Driver) buildSpec(ctx context.Context, file string, spec *testfixture.CrateSpec, inProgress map[string]bool) (*resolve.CrateDefMap, error) {
	if dm, ok := d.built[spec.CrateID]; ok {
		return dm, nil
	}
	if inProgress[file] {
		return nil, errors.Errorf("cratemap: dependency cycle involving %s", file)
	}
	inProgress[file] = true

	depMaps := make(map[int32]*resolve.CrateDefMap, len(spec.Dependencies))
	for _, dep := range spec.Dependencies {
		if dep.SpecFile == "" {
			continue
		}
		depSpec, err := d.loadSpec(dep.SpecFile)
		if err != nil {
			return nil, err
		}
		depMap, err := d.buildSpec(ctx, dep.SpecFile, depSpec, inProgress)
		if err != nil {
			return nil, err
		}
		depMaps[dep.CrateID] = depMap
	}

	crate, fs, expander, walker := testfixture.Build(spec, depMaps)

	var progress resolve.ProgressToken
	if d.ctx.Config.Verbose {
		progress = &progressLogger{logger: d.ctx.Logger}
	}

	d.ctx.Logger.Stage("building crate %d from %s", spec.CrateID, file)
	dm, err := resolve.BuildCrateDefMap(ctx, crate, fs, expander, walker, progress, d.ctx.Config.resolveOptions())
	if err != nil {
		return nil, errors.Wrapf(err, "building crate %d (%s)", spec.CrateID, file)
	}
	if dm == nil {
		return nil, errors.Errorf("cratemap: crate %d (%s) has no root module", spec.CrateID, file)
	}

	d.built[spec.CrateID] = dm
	return dm, nil
}
