package importer

import "github.com/matzehuels/tracegraph/pkg/trace"

// Link is an inferred data dependency between two operators, given as
// indices into the operator list.
type Link struct {
	From int // producer index
	To   int // consumer index
}

// InferEdges returns one Link for every ordered pair (producer, consumer)
// where some output slot of the producer is an input slot of the consumer.
// Links are ordered by producer, then consumer, in trace order.
//
// This is the direct O(n²) pairwise test. It performs no cycle check and
// relies on the trace being a valid dataflow DAG.
func InferEdges(ops []trace.Operator) []Link {
	var links []Link
	for i, producer := range ops {
		outs := make(map[int]struct{}, len(producer.Outputs))
		for _, o := range producer.Outputs {
			outs[o.ID] = struct{}{}
		}
		for j, consumer := range ops {
			for _, in := range consumer.Inputs {
				if _, ok := outs[in]; ok {
					links = append(links, Link{From: i, To: j})
					break
				}
			}
		}
	}
	return links
}

// InferEdgesIndexed returns the same links as [InferEdges], in the same
// order, using an index from output slot to producer instead of testing
// every pair.
func InferEdgesIndexed(ops []trace.Operator) []Link {
	producers := make(map[int][]int)
	for i, op := range ops {
		for _, o := range op.Outputs {
			producers[o.ID] = append(producers[o.ID], i)
		}
	}

	// consumers[i] collects consumer indices of producer i in ascending
	// order because j is visited in ascending order.
	consumers := make([][]int, len(ops))
	lastSeen := make([]int, len(ops))
	for i := range lastSeen {
		lastSeen[i] = -1
	}
	for j, op := range ops {
		for _, in := range op.Inputs {
			for _, i := range producers[in] {
				if lastSeen[i] == j {
					continue
				}
				lastSeen[i] = j
				consumers[i] = append(consumers[i], j)
			}
		}
	}

	var links []Link
	for i, cs := range consumers {
		for _, j := range cs {
			links = append(links, Link{From: i, To: j})
		}
	}
	return links
}
