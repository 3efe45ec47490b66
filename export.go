package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"rrt-planner/planner"
)

// Feature kinds set in the "kind" property of exported features
const (
	kindEdge     = "edge"
	kindPath     = "path"
	kindObstacle = "obstacle"
	kindStart    = "start"
	kindGoal     = "goal"
)

// runFeatureCollection renders a run as GeoJSON for external viewers:
// obstacles, start and goal markers, one LineString per tree edge, and the
// path when the goal was reached.
func runFeatureCollection(rec *runRecord) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"runId":  rec.ID,
		"status": string(rec.Result.Status),
	}

	for i, o := range rec.Config.Obstacles {
		f := geojson.NewFeature(o.Bound().ToPolygon())
		f.Properties["kind"] = kindObstacle
		f.Properties["index"] = i
		fc.Append(f)
	}

	start := geojson.NewFeature(rec.Config.Start.Orb())
	start.Properties["kind"] = kindStart
	fc.Append(start)

	goal := geojson.NewFeature(rec.Config.Goal.Orb())
	goal.Properties["kind"] = kindGoal
	goal.Properties["radius"] = rec.Config.GoalRadius
	fc.Append(goal)

	for i, node := range rec.Result.Nodes {
		if node.IsRoot() {
			continue
		}
		parent := rec.Result.Nodes[node.Parent]
		f := geojson.NewFeature(orb.LineString{parent.Position.Orb(), node.Position.Orb()})
		f.Properties["kind"] = kindEdge
		f.Properties["child"] = i
		f.Properties["parent"] = node.Parent
		fc.Append(f)
	}

	if len(rec.Result.Path) > 1 {
		f := geojson.NewFeature(planner.LineString(rec.Result.Path))
		f.Properties["kind"] = kindPath
		f.Properties["length"] = planner.PathLength(rec.Result.Path)
		fc.Append(f)
	}

	return fc
}

// saveRunGeoJSON serializes a run and writes it to a file
func saveRunGeoJSON(rec *runRecord, filename string, logger *zap.Logger) error {
	data, err := json.MarshalIndent(runFeatureCollection(rec), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Info("run saved", zap.String("file", filename), zap.Int("bytes", len(data)))
	return nil
}
