package upred

import "math/rand"

// Split splits the given records into a training and a test set.  The
// given ratio determines the relative size of the test set.  The
// records are shuffled using the given random number generator.
func Split(records []Record, ratio float64, rng *rand.Rand) (train, test []Record) {
	n := int(float64(len(records)) * ratio)
	perm := rng.Perm(len(records))
	for i, idx := range perm {
		if i < n {
			test = append(test, records[idx])
		} else {
			train = append(train, records[idx])
		}
	}
	return train, test
}
