package schema

type FieldType uint8

const (
	IntFieldType FieldType = iota
	BoolFieldType
	FloatFieldType
	DoubleFieldType
	StringFieldType
	BinaryFieldType
	TimestampFieldType
	DecimalFieldType
	UUIDFieldType
	ObjectIDFieldType
	MixedFieldType
	LinkFieldType
	LinkListFieldType
)

func (f FieldType) String() string {
	switch f {
	case IntFieldType:
		return "Int"
	case BoolFieldType:
		return "Bool"
	case FloatFieldType:
		return "Float"
	case DoubleFieldType:
		return "Double"
	case StringFieldType:
		return "String"
	case BinaryFieldType:
		return "Binary"
	case TimestampFieldType:
		return "Timestamp"
	case DecimalFieldType:
		return "Decimal"
	case UUIDFieldType:
		return "UUID"
	case ObjectIDFieldType:
		return "ObjectID"
	case MixedFieldType:
		return "Mixed"
	case LinkFieldType:
		return "Link"
	case LinkListFieldType:
		return "LinkList"
	default:
		return ""
	}
}

// Size is the in-leaf width of fixed-size types, 0 for variable sized ones.
func (f FieldType) Size() int {
	switch f {
	case BoolFieldType:
		return 1
	case FloatFieldType:
		return 4
	case IntFieldType, DoubleFieldType, LinkFieldType:
		return 8
	case ObjectIDFieldType:
		return 12
	case TimestampFieldType, DecimalFieldType, UUIDFieldType:
		return 16
	default:
		return 0
	}
}

func (f FieldType) IsLink() bool {
	return f == LinkFieldType || f == LinkListFieldType
}

// Kind is the value kind a non-null element of this column carries.
func (f FieldType) Kind() Kind {
	switch f {
	case IntFieldType:
		return KindInt
	case BoolFieldType:
		return KindBool
	case FloatFieldType:
		return KindFloat
	case DoubleFieldType:
		return KindDouble
	case StringFieldType:
		return KindString
	case BinaryFieldType:
		return KindBinary
	case TimestampFieldType:
		return KindTimestamp
	case DecimalFieldType:
		return KindDecimal
	case UUIDFieldType:
		return KindUUID
	case ObjectIDFieldType:
		return KindObjectID
	case LinkFieldType, LinkListFieldType:
		return KindLink
	default:
		return KindNull
	}
}

type CollectionType uint8

const (
	NoCollection CollectionType = iota
	ListCollection
	SetCollection
	DictionaryCollection
)

func (c CollectionType) String() string {
	switch c {
	case ListCollection:
		return "List"
	case SetCollection:
		return "Set"
	case DictionaryCollection:
		return "Dictionary"
	default:
		return ""
	}
}
