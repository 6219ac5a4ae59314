package instance

import "github.com/ecocampus-app/ecocampus-backend/pkg/env"

// GetID identifies this worker replica in log output. Deployments set
// WORKER_ID per replica; a single local process falls back to worker-0.
func GetID() string {
	return env.Get("WORKER_ID", "worker-0")
}
