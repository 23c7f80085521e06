package reservoir

type nilInstrument struct{}

func NewNilInstrument() Instrument {
	return &nilInstrument{}
}

func (self *nilInstrument) NewInstance(_ string) InstrumentInstance {
	return &NilInstrumentInstance{}
}

type NilInstrumentInstance struct{}

func (n NilInstrumentInstance) Allocated() {}

func (n NilInstrumentInstance) Acquired() {}

func (n NilInstrumentInstance) Released() {}

func (n NilInstrumentInstance) ReleaseIgnored(string) {}

func (n NilInstrumentInstance) Rejected() {}

func (n NilInstrumentInstance) Recycled() {}

func (n NilInstrumentInstance) SizeChanged(int, int) {}

func (n NilInstrumentInstance) Shutdown() {}
