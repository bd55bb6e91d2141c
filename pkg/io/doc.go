// Package io provides JSON import and export for operator graphs.
//
// # JSON Format
//
// A graph is an object with optional graph metadata and two arrays:
//
//	{
//	  "meta": {"input_names": ["image"]},
//	  "nodes": [
//	    {"id": "Net/Conv2d[conv1]/outputs/10", "op": "Conv", "shape": [1, 8, 30, 30]},
//	    {"id": "Net/outputs/12", "op": "Relu", "shape": [1, 8, 30, 30]},
//	    {"id": "Net/Linear[fc]/outputs/16", "op": "Linear", "params": {"alpha": 1.0, "beta": 1.0, "transB": 1}}
//	  ],
//	  "edges": [
//	    {"from": "Net/Conv2d[conv1]/outputs/10", "to": "Net/outputs/12", "shape": [1, 8, 30, 30]}
//	  ]
//	}
//
// Float params are always written with a fraction or exponent, so ints and
// floats read back with their original types. Unknown shapes and empty
// params are omitted. Node and edge order follows
// graph order, so exports of the same graph are byte-identical.
//
// Use [WriteJSON] and [ReadJSON] for streams, [ExportJSON] and [ImportJSON]
// for files.
package io
