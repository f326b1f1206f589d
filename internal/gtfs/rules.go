// Package gtfs cleans raw GTFS exports into the *_clean.csv files the SQL
// generator consumes.
package gtfs

import (
	"transitsql/internal/records"
	"transitsql/internal/transformer"
	"transitsql/internal/transformer/builtin"
)

// Rule describes how one GTFS file is cleaned. Steps run in a fixed order:
// trim, coerce, require, de-duplicate.
type Rule struct {
	Name     string            // file base name, e.g. "stop_times"
	Trim     []string          // string columns to trim
	Types    map[string]string // column -> builtin.Kind*
	Defaults map[string]any    // fill for columns that are missing after coercion
	Require  []string          // rows missing any of these are dropped
	Key      []string          // de-duplication key, keep first; empty disables
}

// Chain builds the transformer chain for r. onDrop sees rows removed by
// Require; de-duplicated rows are only counted by the caller.
func (r Rule) Chain(onDrop func(records.Record)) transformer.Chain {
	var c transformer.Chain
	if len(r.Trim) > 0 {
		c = append(c, builtin.Normalize{Fields: r.Trim})
	}
	if len(r.Types) > 0 {
		c = append(c, builtin.Coerce{Types: r.Types, Defaults: r.Defaults})
	}
	if len(r.Require) > 0 {
		c = append(c, builtin.Require{Fields: r.Require, OnDrop: onDrop})
	}
	if len(r.Key) > 0 {
		c = append(c, builtin.DeDup{Keys: r.Key, Policy: "keep-first"})
	}
	return c
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DefaultRules returns the cleaning rules for the standard GTFS files, in
// the order they are processed.
func DefaultRules() []Rule {
	calTypes := map[string]string{"start_date": builtin.KindDate, "end_date": builtin.KindDate}
	for _, d := range weekdays {
		calTypes[d] = builtin.KindFlag
	}
	zero := int64(0)

	return []Rule{
		{
			Name: "agency",
			Trim: []string{"agency_id", "agency_name", "agency_url", "agency_timezone", "agency_lang", "agency_phone", "agency_fare_url", "agency_email"},
			Key:  []string{"agency_id"},
		},
		{
			Name:  "calendar",
			Trim:  []string{"service_id"},
			Types: calTypes,
			Key:   []string{"service_id"},
		},
		{
			Name:     "calendar_dates",
			Trim:     []string{"service_id"},
			Types:    map[string]string{"exception_type": builtin.KindInt, "date": builtin.KindDate},
			Defaults: map[string]any{"exception_type": zero},
			Key:      []string{"service_id", "date"},
		},
		{
			Name:  "fare_attributes",
			Trim:  []string{"fare_id", "currency_type", "agency_id"},
			Types: map[string]string{"price": builtin.KindFloat, "payment_method": builtin.KindInt, "transfers": builtin.KindInt},
			Key:   []string{"fare_id"},
		},
		{
			Name: "fare_rules",
			Trim: []string{"fare_id", "route_id"},
			Key:  []string{"fare_id", "route_id"},
		},
		{
			Name:  "feed_info",
			Trim:  []string{"feed_publisher_name", "feed_publisher_url", "feed_lang", "feed_version", "feed_contact_email", "feed_contact_url"},
			Types: map[string]string{"feed_start_date": builtin.KindDate, "feed_end_date": builtin.KindDate},
		},
		{
			Name:  "routes",
			Trim:  []string{"route_id", "agency_id", "route_short_name", "route_long_name", "route_url"},
			Types: map[string]string{"route_type": builtin.KindInt},
			Key:   []string{"route_id"},
		},
		{
			Name: "shapes",
			Trim: []string{"shape_id"},
			Types: map[string]string{
				"shape_pt_lat":        builtin.KindFloat,
				"shape_pt_lon":        builtin.KindFloat,
				"shape_pt_sequence":   builtin.KindInt,
				"shape_dist_traveled": builtin.KindFloat,
			},
			Key: []string{"shape_id", "shape_pt_sequence"},
		},
		{
			Name: "stop_times",
			Trim: []string{"trip_id", "stop_id"},
			Types: map[string]string{
				"arrival_time":   builtin.KindTime,
				"departure_time": builtin.KindTime,
				"stop_sequence":  builtin.KindInt,
			},
			Require: []string{"trip_id", "stop_id"},
			Key:     []string{"trip_id", "stop_sequence"},
		},
		{
			Name:     "stops",
			Trim:     []string{"stop_id", "stop_name", "stop_url"},
			Types:    map[string]string{"stop_lat": builtin.KindFloat, "stop_lon": builtin.KindFloat, "location_type": builtin.KindInt},
			Defaults: map[string]any{"location_type": zero},
			Key:      []string{"stop_id"},
		},
		{
			Name:     "trips",
			Trim:     []string{"route_id", "service_id", "trip_id", "trip_headsign", "shape_id"},
			Types:    map[string]string{"direction_id": builtin.KindInt},
			Defaults: map[string]any{"direction_id": zero},
			Key:      []string{"trip_id"},
		},
	}
}
