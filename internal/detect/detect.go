package detect

import (
	"fmt"

	"github.com/auto-compose/composectl/internal/snapshot"
	"github.com/auto-compose/composectl/internal/status"
	"github.com/rs/zerolog"
)

// Changed reports whether any container named in affected moved between
// the pre and post snapshots. Containers outside the affected set never
// influence the verdict. An empty affected set is always unchanged.
//
// A parse failure on either status aborts the whole detection; callers
// are expected to treat that as changed rather than unchanged.
func Changed(pre, post snapshot.Snapshot, affected []string, logger zerolog.Logger) (bool, error) {
	if len(affected) == 0 {
		logger.Debug().Msg("No affected containers, reporting unchanged")
		return false, nil
	}

	for _, name := range affected {
		preRec, preFound := pre[name]
		postRec, postFound := post[name]
		if !preFound || !postFound {
			logger.Debug().Str("container", name).Bool("pre", preFound).Bool("post", postFound).Msg("Container appeared or disappeared")
			return true, nil
		}

		if !preRec.Created.Equal(postRec.Created) {
			logger.Debug().Str("container", name).Time("pre_created", preRec.Created).Time("post_created", postRec.Created).Msg("Container was recreated")
			return true, nil
		}

		preStatus, err := status.Parse(preRec.Status)
		if err != nil {
			return false, fmt.Errorf("parsing pre-operation status of %s: %w", name, err)
		}
		postStatus, err := status.Parse(postRec.Status)
		if err != nil {
			return false, fmt.Errorf("parsing post-operation status of %s: %w", name, err)
		}

		if preStatus.Phase != postStatus.Phase {
			logger.Debug().Str("container", name).Str("pre_phase", preStatus.Phase).Str("post_phase", postStatus.Phase).Msg("Container phase changed")
			return true, nil
		}

		if preStatus.Phase == "Up" {
			// A running container's age bucket only grows within one
			// invocation window; shrinking means the uptime counter reset.
			if preStatus.Bucket > postStatus.Bucket {
				logger.Debug().Str("container", name).Msg("Uptime bucket shrank, container restarted")
				return true, nil
			}
		} else {
			// Stopped phases anchor on the stop time, so the comparison
			// direction flips.
			if preStatus.Bucket < postStatus.Bucket {
				logger.Debug().Str("container", name).Msg("Time since stop grew across buckets")
				return true, nil
			}
		}
	}

	return false, nil
}
