// Package locale loads the localization dictionaries used by match reports.
//
// A locale groups ordered key/value tables by category:
//   - civilizations: internal civilization name to display name
//   - map_sizes: display label per map size, checked in file order
//   - difficulties, reveal_map, game_speeds: lobby setting names
//   - map_names: map display names (optional per key)
//
// plus the label used for team battles ("team_battle").
//
// Locale Files:
//
// Locales live in a directory as <name>.json, <name>.yaml or <name>.yml.
// Key order inside each table is preserved because map size bucketing picks
// the first label that contains the size name.
//
//	{
//	  "team_battle": "Batalla de equipos",
//	  "map_sizes": {
//	    "Tiny (2 players)": "Diminuto (2 jugadores)",
//	    "Small (3 players)": "Pequeño (3 jugadores)"
//	  }
//	}
//
// Usage:
//
//	manager, err := locale.NewManager("locales", "es")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	loc := manager.GetDefault()
//	name, err := loc.Lookup(locale.Civilizations, "Britons")
//
// A missing key returns a *LookupError that matches ErrMissingEntry.
package locale
