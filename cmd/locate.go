package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/city-insights/internal/geo"
	"github.com/sells-group/city-insights/internal/score"
)

// location is what the score and zone commands print for a point.
type location struct {
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	Zone         *string  `json:"zip_code"`
	UrbanRing    geo.Ring `json:"urban_ring"`
	TransitScore *float64 `json:"transit_score,omitempty"`
}

func locate(lat, lng float64, withScore bool) location {
	loc := location{Lat: lat, Lng: lng, UrbanRing: geo.RingUnknown}
	idx := geo.DefaultIndex()
	if zone, ok := idx.NearestZone(lat, lng); ok {
		loc.Zone = &zone
		loc.UrbanRing = idx.Ring(zone)
	}
	if withScore {
		if s, ok := score.DefaultEngine().Score(lat, lng); ok {
			loc.TransitScore = &s
		}
	}
	return loc
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode output")
}

func pointFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("lat", 0, "latitude")
	cmd.Flags().Float64("lng", 0, "longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
}

func point(cmd *cobra.Command) (float64, float64) {
	lat, _ := cmd.Flags().GetFloat64("lat")
	lng, _ := cmd.Flags().GetFloat64("lng")
	return lat, lng
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Print the transit accessibility score for a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, lng := point(cmd)
		return printJSON(cmd.OutOrStdout(), locate(lat, lng, true))
	},
}

var zoneCmd = &cobra.Command{
	Use:   "zone",
	Short: "Print the zone and urban ring for a point",
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, lng := point(cmd)
		return printJSON(cmd.OutOrStdout(), locate(lat, lng, false))
	},
}

func init() {
	pointFlags(scoreCmd)
	pointFlags(zoneCmd)
	rootCmd.AddCommand(scoreCmd, zoneCmd)
}
