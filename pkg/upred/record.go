package upred

// Record represents one user-activity data point.
type Record struct {
	Payload interface{}        // record payload; holds the Prediction for predicted records
	Fields  map[string]float64 // named numeric fields; field names are lower case
	Email   string             // email address of the user
	File    string             // source file of the record
	Line    int                // line of the record in its source file
	Label   float64            // ground-truth label
	HasGT   bool               // whether the record carries a ground-truth label
}

// T is a shorthand type alias for Record.
type T = Record

func (r Record) String() string {
	return r.Email
}

// Prediction represents a predicted label for a record.
type Prediction struct {
	Label float64 // predicted label
	Conf  float64 // probability of the predicted label
}
