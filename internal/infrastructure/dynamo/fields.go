package dynamo

// DynamoDB attribute names used directly by the repos. Using constants
// prevents silent runtime bugs caused by key typos.
const (
	fieldRead = "read"
)
