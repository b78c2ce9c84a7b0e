// Ceres coordinates multi-model generative-AI capacity for the NutriVita
// backend.
//
// It fronts a fixed chain of Gemini models, moving models onto shared
// cooldowns when the provider reports rate limiting or overload and routing
// each request to the first model that is ready:
//   - Live coaching requests fail fast so users never wait on capacity
//   - Batch digest jobs walk the whole chain and wait out cooldowns
//   - Cooldown state and usage counters live in shared files so the server
//     and batch processes coordinate without talking to each other
//
// Usage:
//
//	# Start the API server with default configuration
//	ceres run
//
//	# Start with a custom configuration file
//	ceres run --config /etc/ceres/config.yaml
//
//	# Drain the batch queue once
//	ceres batch --once
//
//	# Show per-model cooldown status and usage counters
//	ceres status
//
//	# Classify system health from the capacity-event log
//	ceres report
//
//	# Remove expired cooldown entries from the state file
//	ceres clean
package main

func main() {
	Execute()
}
