package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"rrt-planner/planner"
)

// loadObstacles reads obstacles from a GeoJSON file, or from every
// *.geojson file when path is a directory. Each Polygon or MultiPolygon
// member becomes the axis-aligned rectangle bounding it. A broken file
// fails a single-file load but is skipped in a directory.
func loadObstacles(path string, logger *zap.Logger) ([]planner.Obstacle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read obstacle file: %w", err)
		}
		obstacles, err := parseObstacles(data, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to parse obstacle file %s: %w", path, err)
		}
		logger.Info("loaded obstacles", zap.Int("count", len(obstacles)), zap.String("file", filepath.Base(path)))
		return obstacles, nil
	}

	files, err := filepath.Glob(filepath.Join(path, "*.geojson"))
	if err != nil {
		return nil, err
	}

	logger.Info("loading obstacles", zap.Int("files", len(files)))

	var allObstacles []planner.Obstacle
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("failed to read obstacle file", zap.String("file", file), zap.Error(err))
			continue
		}

		obstacles, err := parseObstacles(data, logger)
		if err != nil {
			logger.Warn("failed to parse obstacle file", zap.String("file", file), zap.Error(err))
			continue
		}

		allObstacles = append(allObstacles, obstacles...)
		logger.Info("loaded obstacles", zap.Int("count", len(obstacles)), zap.String("file", filepath.Base(file)))
	}

	logger.Info("total obstacles loaded", zap.Int("count", len(allObstacles)))
	return allObstacles, nil
}

// parseObstacles converts a GeoJSON FeatureCollection to obstacles
func parseObstacles(data []byte, logger *zap.Logger) ([]planner.Obstacle, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature collection: %w", err)
	}

	var obstacles []planner.Obstacle
	for _, feature := range fc.Features {
		for _, bound := range geometryBounds(feature.Geometry) {
			o := planner.ObstacleFromBound(bound)
			if o.Width <= 0 || o.Height <= 0 {
				logger.Warn("skipping degenerate obstacle", zap.Any("bound", bound))
				continue
			}
			obstacles = append(obstacles, o)
		}
	}
	return obstacles, nil
}

func geometryBounds(g orb.Geometry) []orb.Bound {
	switch geom := g.(type) {
	case orb.Polygon:
		return []orb.Bound{geom.Bound()}
	case orb.MultiPolygon:
		bounds := make([]orb.Bound, 0, len(geom))
		for _, polygon := range geom {
			bounds = append(bounds, polygon.Bound())
		}
		return bounds
	case orb.Bound:
		return []orb.Bound{geom}
	}
	return nil
}
