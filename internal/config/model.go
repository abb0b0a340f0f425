// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs are the typed view the rest of the application consumes.
// They are filled only after the raw document has been provisioned,
// pruned, migrated, and validated: the manager marshals the repaired tree,
// loads it into Koanf together with MEDIAWALL_-prefixed environment
// overrides, and unmarshals into Config.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"` and mirror the JSON property names,
//     which are camelCase in the user's file.
//   - validate tags are a second, typed line of defence after the JSON
//     Schema; they mostly assert invariants the migrator guarantees.
package config

// MediaServer is one connection in the mediaServers list.  Plex and
// Jellyfin speak host+port; RomM takes a full URL.
type MediaServer struct {
	Name        string `koanf:"name" validate:"required"`
	Type        string `koanf:"type" validate:"required,oneof=plex jellyfin romm"`
	Enabled     bool   `koanf:"enabled"`
	Host        string `koanf:"host" validate:"omitempty,hostname|ip"`
	Port        int    `koanf:"port" validate:"omitempty,min=1,max=65535"`
	URL         string `koanf:"url" validate:"omitempty,url"`
	Token       string `koanf:"token"`
	TokenEnvVar string `koanf:"tokenEnvVar"`
}

// Cinema configures the single-poster cinema mode.
type Cinema struct {
	Orientation string `koanf:"orientation" validate:"omitempty,oneof=auto portrait portrait-flipped"`
}

// Display holds presentation tunables shared by all modes.
type Display struct {
	TransitionEffect string `koanf:"transitionEffect" validate:"omitempty,oneof=fade slide ken-burns none"`
	AccentColor      string `koanf:"accentColor" validate:"omitempty,hexcolor|len=6"`
}

// Wallart configures the multi-poster wall layout.
type Wallart struct {
	Layout         string `koanf:"layout" validate:"omitempty,oneof=grid hero mosaic"`
	RefreshMinutes int    `koanf:"refreshMinutes" validate:"omitempty,min=1"`
}

// Romm configures the game-library artwork source.
type Romm struct {
	Artwork string `koanf:"artwork" validate:"omitempty,oneof=cover screenshot"`
}

// TMDB configures metadata enrichment.
type TMDB struct {
	Enabled      bool   `koanf:"enabled"`
	APIKey       string `koanf:"apiKey"`
	APIKeyEnvVar string `koanf:"apiKeyEnvVar"`
}

// Config is the validated aggregate handed to every other subsystem.
type Config struct {
	BackgroundRefreshMinutes  int           `koanf:"backgroundRefreshMinutes" validate:"required,min=5,max=1440"`
	TransitionIntervalSeconds int           `koanf:"transitionIntervalSeconds" validate:"omitempty,min=5,max=300"`
	MaxPosters                int           `koanf:"maxPosters" validate:"omitempty,min=10,max=500"`
	MediaServers              []MediaServer `koanf:"mediaServers" validate:"dive"`
	Cinema                    Cinema        `koanf:"cinema"`
	Display                   Display       `koanf:"display"`
	Wallart                   Wallart       `koanf:"wallart"`
	Romm                      Romm          `koanf:"romm"`
	TMDB                      TMDB          `koanf:"tmdb"`
}
