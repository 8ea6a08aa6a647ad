package config

const (
	defaultDataDir       = "~/.local/share/softalign/data"
	defaultCheckpointDir = "~/.local/share/softalign/checkpoints"
	defaultLogDir        = "~/.local/share/softalign/logs"

	defaultBeam           = 5
	defaultNBest          = 1
	defaultBatchMultiple  = 8
	defaultMaxPositions   = 1024
	defaultAlignmentTask  = "vanilla"
	defaultAlignmentLayer = 2
	defaultBufferCapacity = 4_000_000
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults. The decoding
// directory is intentionally empty: no alignment file is written unless a
// destination is configured explicitly.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:       defaultDataDir,
			CheckpointDir: defaultCheckpointDir,
			LogDir:        defaultLogDir,
		},
		Generation: Generation{
			Beam:                      defaultBeam,
			NBest:                     defaultNBest,
			RequiredBatchSizeMultiple: defaultBatchMultiple,
			MaxSourcePositions:        defaultMaxPositions,
			MaxTargetPositions:        defaultMaxPositions,
		},
		Alignment: Alignment{
			Task:           defaultAlignmentTask,
			Layer:          defaultAlignmentLayer,
			BufferCapacity: defaultBufferCapacity,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
