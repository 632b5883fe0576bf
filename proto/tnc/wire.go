// ABOUTME: Protobuf wire encoding for every tnc message type
// ABOUTME: Field numbers mirror routing/communication/lifecycle/consensus.proto

package tnc

import (
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// routing.proto

func (m *PushRoute) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Route)
	return b, nil
}

func (m *PushRoute) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			return consumeStringField(field, &m.Route)
		}
		return -1, nil
	})
}

func (m *RequestRoute) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Route)
	b = appendInt32Field(b, 2, int32(m.Policy))
	return b, nil
}

func (m *RequestRoute) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Route)
		case num == 2 && typ == protowire.VarintType:
			var v int32
			n, err := consumeInt32Field(field, &v)
			m.Policy = Policy(v)
			return n, err
		}
		return -1, nil
	})
}

func (m *PushEvent) marshal() ([]byte, error) {
	var b []byte
	var err error
	b = appendStringField(b, 1, m.Route)
	if m.Data != nil {
		if b, err = appendMessageField(b, 2, m.Data); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *PushEvent) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Route)
		case num == 2 && typ == protowire.BytesType:
			m.Data = new(anypb.Any)
			return consumeMessageField(field, m.Data)
		}
		return -1, nil
	})
}

func (m *RequestEvent) marshal() ([]byte, error) {
	var b []byte
	var err error
	b = appendStringField(b, 1, m.Route)
	b = appendUint32Field(b, 2, m.RequestId)
	if m.Data != nil {
		if b, err = appendMessageField(b, 3, m.Data); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *RequestEvent) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Route)
		case num == 2 && typ == protowire.VarintType:
			return consumeUint32Field(field, &m.RequestId)
		case num == 3 && typ == protowire.BytesType:
			m.Data = new(anypb.Any)
			return consumeMessageField(field, m.Data)
		}
		return -1, nil
	})
}

func (m *ResponseEvent) marshal() ([]byte, error) {
	var b []byte
	var err error
	b = appendStringField(b, 1, m.Route)
	b = appendUint32Field(b, 2, m.RequestId)
	if m.Data != nil {
		if b, err = appendMessageField(b, 3, m.Data); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *ResponseEvent) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Route)
		case num == 2 && typ == protowire.VarintType:
			return consumeUint32Field(field, &m.RequestId)
		case num == 3 && typ == protowire.BytesType:
			m.Data = new(anypb.Any)
			return consumeMessageField(field, m.Data)
		}
		return -1, nil
	})
}

func (m *RouteEventAck) marshal() ([]byte, error) {
	var b []byte
	b = appendInt32Field(b, 1, m.RoutingCount)
	return b, nil
}

func (m *RouteEventAck) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num == 1 && typ == protowire.VarintType {
			return consumeInt32Field(field, &m.RoutingCount)
		}
		return -1, nil
	})
}

// communication.proto

func (m *CommunicationOptions) marshal() ([]byte, error) {
	var b []byte
	b = appendOptionalString(b, 1, m.Url)
	b = appendOptionalString(b, 2, m.Namespace)
	b = appendOptionalString(b, 3, m.AgentIdentityName)
	b = appendOptionalString(b, 4, m.AgentIdentityId)
	b = appendOptionalString(b, 5, m.Username)
	b = appendOptionalString(b, 6, m.Password)
	b = appendOptionalString(b, 7, m.TlsCert)
	b = appendOptionalString(b, 8, m.TlsKey)
	b = appendOptionalBool(b, 9, m.VerifyServerCert)
	b = appendOptionalBool(b, 10, m.NotFailFastIfOffline)
	return b, nil
}

func (m *CommunicationOptions) unmarshal(data []byte) error {
	optionalString := func(field []byte, dst **string) (int, error) {
		var v string
		n, err := consumeStringField(field, &v)
		if err == nil {
			*dst = &v
		}
		return n, err
	}
	optionalBool := func(field []byte, dst **bool) (int, error) {
		var v bool
		n, err := consumeBoolField(field, &v)
		if err == nil {
			*dst = &v
		}
		return n, err
	}
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return optionalString(field, &m.Url)
		case num == 2 && typ == protowire.BytesType:
			return optionalString(field, &m.Namespace)
		case num == 3 && typ == protowire.BytesType:
			return optionalString(field, &m.AgentIdentityName)
		case num == 4 && typ == protowire.BytesType:
			return optionalString(field, &m.AgentIdentityId)
		case num == 5 && typ == protowire.BytesType:
			return optionalString(field, &m.Username)
		case num == 6 && typ == protowire.BytesType:
			return optionalString(field, &m.Password)
		case num == 7 && typ == protowire.BytesType:
			return optionalString(field, &m.TlsCert)
		case num == 8 && typ == protowire.BytesType:
			return optionalString(field, &m.TlsKey)
		case num == 9 && typ == protowire.VarintType:
			return optionalBool(field, &m.VerifyServerCert)
		case num == 10 && typ == protowire.VarintType:
			return optionalBool(field, &m.NotFailFastIfOffline)
		}
		return -1, nil
	})
}

func (m *ChannelEvent) marshal() ([]byte, error) {
	var b []byte
	var err error
	b = appendStringField(b, 1, m.Id)
	if m.Data != nil {
		if b, err = appendMessageField(b, 2, m.Data); err != nil {
			return nil, err
		}
	}
	b = appendStringField(b, 3, m.SourceId)
	return b, nil
}

func (m *ChannelEvent) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Id)
		case num == 2 && typ == protowire.BytesType:
			m.Data = new(anypb.Any)
			return consumeMessageField(field, m.Data)
		case num == 3 && typ == protowire.BytesType:
			return consumeStringField(field, &m.SourceId)
		}
		return -1, nil
	})
}

func (m *ChannelFilter) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Id)
	return b, nil
}

func (m *ChannelFilter) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			return consumeStringField(field, &m.Id)
		}
		return -1, nil
	})
}

func (m *CallEvent) marshal() ([]byte, error) {
	var b []byte
	var err error
	b = appendStringField(b, 1, m.Operation)
	if m.Data != nil {
		if b, err = appendMessageField(b, 2, m.Data); err != nil {
			return nil, err
		}
	}
	b = appendStringField(b, 3, m.SourceId)
	b = appendStringField(b, 4, m.CorrelationId)
	return b, nil
}

func (m *CallEvent) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Operation)
		case num == 2 && typ == protowire.BytesType:
			m.Data = new(anypb.Any)
			return consumeMessageField(field, m.Data)
		case num == 3 && typ == protowire.BytesType:
			return consumeStringField(field, &m.SourceId)
		case num == 4 && typ == protowire.BytesType:
			return consumeStringField(field, &m.CorrelationId)
		}
		return -1, nil
	})
}

func (m *CallFilter) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Operation)
	return b, nil
}

func (m *CallFilter) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			return consumeStringField(field, &m.Operation)
		}
		return -1, nil
	})
}

func (m *ReturnEvent) marshal() ([]byte, error) {
	var b []byte
	var err error
	b = appendStringField(b, 1, m.CorrelationId)
	if m.Data != nil {
		if b, err = appendMessageField(b, 2, m.Data); err != nil {
			return nil, err
		}
	}
	b = appendStringField(b, 3, m.Error)
	b = appendStringField(b, 4, m.SourceId)
	b = appendInt32Field(b, 5, m.SequenceNumber)
	return b, nil
}

func (m *ReturnEvent) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.CorrelationId)
		case num == 2 && typ == protowire.BytesType:
			m.Data = new(anypb.Any)
			return consumeMessageField(field, m.Data)
		case num == 3 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Error)
		case num == 4 && typ == protowire.BytesType:
			return consumeStringField(field, &m.SourceId)
		case num == 5 && typ == protowire.VarintType:
			return consumeInt32Field(field, &m.SequenceNumber)
		}
		return -1, nil
	})
}

func (m *CompleteEvent) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.CorrelationId)
	return b, nil
}

func (m *CompleteEvent) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			return consumeStringField(field, &m.CorrelationId)
		}
		return -1, nil
	})
}

func (m *EventAck) marshal() ([]byte, error) {
	return nil, nil
}

func (m *EventAck) unmarshal(data []byte) error {
	return walk(data, func(protowire.Number, protowire.Type, []byte) (int, error) {
		return -1, nil
	})
}

// lifecycle.proto

func (m *AgentSelector) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.IdentityId)
	b = appendStringField(b, 2, m.IdentityName)
	return b, nil
}

func (m *AgentSelector) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.IdentityId)
		case num == 2 && typ == protowire.BytesType:
			return consumeStringField(field, &m.IdentityName)
		}
		return -1, nil
	})
}

func (m *AgentIdentity) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Id)
	b = appendStringField(b, 2, m.Name)
	b = appendStringField(b, 3, m.Role)
	return b, nil
}

func (m *AgentIdentity) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Id)
		case num == 2 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Name)
		case num == 3 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Role)
		}
		return -1, nil
	})
}

func (m *AgentLifecycleEvent) marshal() ([]byte, error) {
	var b []byte
	if m.Identity != nil {
		identity, err := m.Identity.marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, identity)
	}
	b = appendInt32Field(b, 2, int32(m.Change))
	b = appendBoolField(b, 3, m.Local)
	return b, nil
}

func (m *AgentLifecycleEvent) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(field)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Identity = new(AgentIdentity)
			if err := m.Identity.unmarshal(v); err != nil {
				return 0, err
			}
			return n, nil
		case num == 2 && typ == protowire.VarintType:
			var v int32
			n, err := consumeInt32Field(field, &v)
			m.Change = LifecycleChange(v)
			return n, err
		case num == 3 && typ == protowire.VarintType:
			return consumeBoolField(field, &m.Local)
		}
		return -1, nil
	})
}

// consensus.proto

func (m *CreateOptions) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Cluster)
	b = appendBoolField(b, 2, m.ShouldCreateCluster)
	return b, nil
}

func (m *CreateOptions) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Cluster)
		case num == 2 && typ == protowire.VarintType:
			return consumeBoolField(field, &m.ShouldCreateCluster)
		}
		return -1, nil
	})
}

func (m *CreateResponse) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Id)
	return b, nil
}

func (m *CreateResponse) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			return consumeStringField(field, &m.Id)
		}
		return -1, nil
	})
}

func (m *NodeRef) marshal() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.Id)
	return b, nil
}

func (m *NodeRef) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			return consumeStringField(field, &m.Id)
		}
		return -1, nil
	})
}

func (m *ProposeInput) marshal() ([]byte, error) {
	var b []byte
	var err error
	b = appendStringField(b, 1, m.Id)
	b = appendInt32Field(b, 2, int32(m.Operation))
	b = appendStringField(b, 3, m.Key)
	if m.Value != nil {
		if b, err = appendMessageField(b, 4, m.Value); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *ProposeInput) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Id)
		case num == 2 && typ == protowire.VarintType:
			var v int32
			n, err := consumeInt32Field(field, &v)
			m.Operation = RaftOperation(v)
			return n, err
		case num == 3 && typ == protowire.BytesType:
			return consumeStringField(field, &m.Key)
		case num == 4 && typ == protowire.BytesType:
			m.Value = new(structpb.Value)
			return consumeMessageField(field, m.Value)
		}
		return -1, nil
	})
}

func (m *ConsensusAck) marshal() ([]byte, error) {
	return nil, nil
}

func (m *ConsensusAck) unmarshal(data []byte) error {
	return walk(data, func(protowire.Number, protowire.Type, []byte) (int, error) {
		return -1, nil
	})
}

func (m *State) marshal() ([]byte, error) {
	var b []byte
	for key, value := range m.Entries {
		var entry []byte
		entry = appendStringField(entry, 1, key)
		if value != nil {
			var err error
			if entry, err = appendMessageField(entry, 2, value); err != nil {
				return nil, err
			}
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b, nil
}

func (m *State) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num != 1 || typ != protowire.BytesType {
			return -1, nil
		}
		entry, n := protowire.ConsumeBytes(field)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		var key string
		value := new(structpb.Value)
		err := walk(entry, func(enum protowire.Number, etyp protowire.Type, efield []byte) (int, error) {
			switch {
			case enum == 1 && etyp == protowire.BytesType:
				return consumeStringField(efield, &key)
			case enum == 2 && etyp == protowire.BytesType:
				return consumeMessageField(efield, value)
			}
			return -1, nil
		})
		if err != nil {
			return 0, err
		}
		if m.Entries == nil {
			m.Entries = make(map[string]*structpb.Value)
		}
		m.Entries[key] = value
		return n, nil
	})
}

func (m *ClusterConfiguration) marshal() ([]byte, error) {
	var b []byte
	for _, id := range m.Ids {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, id)
	}
	return b, nil
}

func (m *ClusterConfiguration) unmarshal(data []byte) error {
	return walk(data, func(num protowire.Number, typ protowire.Type, field []byte) (int, error) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(field)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			m.Ids = append(m.Ids, v)
			return n, nil
		}
		return -1, nil
	})
}
