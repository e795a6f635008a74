// Command trace computes a single ray path and prints it, for piping into
// a renderer or eyeballing in a terminal.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/seismotools/raypath/pkg/config"
	"github.com/seismotools/raypath/pkg/geomodel"
	"github.com/seismotools/raypath/pkg/raytrace"
)

func main() {
	var (
		cfgFile   = flag.String("config", "", "YAML config file holding named models")
		modelName = flag.String("model", "", "Named model from the config file")
		layerSpec = flag.String("layers", "", "Inline model: 'base,top,velocity;base,top,velocity;...' deepest first")
		depth     = flag.Float64("depth", 0, "Source depth in meters (overrides the model default)")
		depthSet  = false
		angle     = flag.Float64("angle", 0, "Incidence angle in degrees from vertical")
		strict    = flag.Bool("strict", false, "Treat a trapped ray as an error")
		asJSON    = flag.Bool("json", false, "Print the path as JSON")
	)
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "depth" {
			depthSet = true
		}
	})

	model, err := buildModel(*cfgFile, *modelName, *layerSpec, *depth, depthSet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tracer := raytrace.NewTracer(model)
	var path *raytrace.Path
	if *strict {
		path, err = tracer.TraceToSurface(*angle)
	} else {
		path, err = tracer.Trace(*angle)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("status: %s\n", path.Status)
	fmt.Printf("%12s %12s %10s  %s\n", "offset (m)", "altitude (m)", "angle (°)", "kind")
	for _, v := range path.Vertices {
		fmt.Printf("%12.2f %12.2f %10.2f  %s\n", v.Offset, v.Altitude, v.Angle, v.Kind)
	}
}

func buildModel(cfgFile, modelName, layerSpec string, depth float64, depthSet bool) (*geomodel.Model, error) {
	if layerSpec != "" {
		if !depthSet {
			return nil, fmt.Errorf("-layers requires -depth")
		}
		triples, err := parseLayers(layerSpec)
		if err != nil {
			return nil, err
		}
		return geomodel.FromTriples(triples, depth)
	}

	if cfgFile == "" || modelName == "" {
		return nil, fmt.Errorf("pass -config and -model, or an inline -layers spec")
	}

	cfg, err := config.NewYAMLProvider(cfgFile).LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfgModel, err := cfg.ModelByName(modelName)
	if err != nil {
		return nil, err
	}

	layers := make([]geomodel.Layer, len(cfgModel.Layers))
	for i, l := range cfgModel.Layers {
		layers[i] = geomodel.Layer{Base: l.Base, Top: l.Top, Velocity: l.Velocity}
	}
	sourceDepth := cfgModel.SourceDepth
	if depthSet {
		sourceDepth = depth
	}
	return geomodel.New(layers, sourceDepth)
}

func parseLayers(spec string) ([][]float64, error) {
	var triples [][]float64
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ",")
		triple := make([]float64, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("bad layer value %q: %w", f, err)
			}
			triple = append(triple, v)
		}
		triples = append(triples, triple)
	}
	return triples, nil
}
