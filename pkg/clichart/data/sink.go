package data

// DataSink receives the events produced by a Parser for one axis.
type DataSink interface {
	// HeaderParsed supplies one name per requested y column. Missing headers
	// are "" and trailing missing headers are dropped.
	HeaderParsed(headers []string) error

	// DataParsed supplies the x value and the y values of one data line.
	// values holds one entry per requested column, possibly null, unless
	// missing-column tolerance trimmed trailing nulls.
	DataParsed(x X, values []Value, lineNumber int) error

	// ParsingFinished is called once when the input is exhausted.
	ParsingFinished()
}
