package common

const (
	RedisStreamThesisScan = "thesis.scan.requested"

	RedisStreamGroup    = "scan-group"
	RedisStreamConsumer = "scan-consumer"
)

// PayloadField is the stream entry field holding the JSON payload.
const PayloadField = "payload"
