// Package pipeline builds the capture pipelines that feed the RTSP relay.
// Each pipeline is a list of process stages expressed as structured argv
// slices, never as shell strings, so arguments survive spaces and quoting.
package pipeline

// Config holds the capture and transport settings shared by all pipelines.
type Config struct {
	// ALSADevice is the capture device for the turntable's USB interface.
	ALSADevice string `toml:"alsa_device" json:"alsa_device"`
	// CDDevice is the optical drive block device.
	CDDevice string `toml:"cd_device" json:"cd_device"`
	// RTSPBase is the base URL of the RTSP relay; the stream name is appended.
	RTSPBase string `toml:"rtsp_base" json:"rtsp_base"`
	// Bitrate is the Opus target bitrate for all streams.
	Bitrate string `toml:"bitrate" json:"bitrate"`
}

// DefaultConfig returns the settings for the stock appliance build.
func DefaultConfig() Config {
	return Config{
		ALSADevice: "hw:CARD=Device,DEV=0",
		CDDevice:   "/dev/sr0",
		RTSPBase:   "rtsp://localhost:8554",
		Bitrate:    "64k",
	}
}

// Pipeline describes a named capture pipeline as one or more process stages.
// Stages after the first read the previous stage's stdout. Transcoder and
// Marker identify the pipeline's encoding stage in a process listing, used
// to detect instances that outlived the server.
type Pipeline struct {
	Name       string
	Display    string
	Transcoder string
	Marker     string
	Stages     [][]string
}

// Vinyl builds the turntable pipeline: ALSA capture encoded to Opus and
// published to the RTSP relay in a single ffmpeg stage.
func Vinyl(cfg Config) Pipeline {
	url := cfg.RTSPBase + "/vinyl"
	return Pipeline{
		Name:       "vinyl",
		Display:    "Vinyl",
		Transcoder: "ffmpeg",
		Marker:     "/vinyl",
		Stages: [][]string{
			{
				"ffmpeg",
				"-thread_queue_size", "4096",
				"-f", "alsa",
				"-ac", "2",
				"-ar", "48000",
				"-i", cfg.ALSADevice,
				"-c:a", "libopus",
				"-b:a", cfg.Bitrate,
				"-vbr", "off",
				"-application", "lowdelay",
				// Async resample smooths over USB capture clock drift
				"-af", "aresample=async=1000",
				"-rtsp_transport", "tcp",
				"-f", "rtsp",
				url,
			},
		},
	}
}

// CD builds the optical drive pipeline: cdparanoia rips the whole disc to
// stdout as WAV, ffmpeg encodes it to Opus and publishes to the RTSP relay.
// The -re flag paces encoding at playback speed so the rip does not race
// ahead of the listener.
func CD(cfg Config) Pipeline {
	url := cfg.RTSPBase + "/cd"
	return Pipeline{
		Name:       "cd",
		Display:    "CD",
		Transcoder: "ffmpeg",
		Marker:     "/cd",
		Stages: [][]string{
			{
				"cdparanoia",
				"-d", cfg.CDDevice,
				"-w",
				"1-",
				"-",
			},
			{
				"ffmpeg",
				"-re",
				"-thread_queue_size", "4096",
				"-f", "wav",
				"-i", "-",
				"-c:a", "libopus",
				"-b:a", cfg.Bitrate,
				"-vbr", "off",
				"-application", "lowdelay",
				"-rtsp_transport", "tcp",
				"-f", "rtsp",
				url,
			},
		},
	}
}
