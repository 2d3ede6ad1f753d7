package domain

// BloodType ABO/Rh 血型标签（8 种规范值）
type BloodType string

const (
	APos  BloodType = "A+"
	ANeg  BloodType = "A-"
	BPos  BloodType = "B+"
	BNeg  BloodType = "B-"
	ABPos BloodType = "AB+"
	ABNeg BloodType = "AB-"
	OPos  BloodType = "O+"
	ONeg  BloodType = "O-"
)

// BloodTypes 全部 8 种血型（固定顺序，用于统计输出）
var BloodTypes = []BloodType{APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg}

func (b BloodType) Valid() bool {
	switch b {
	case APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg:
		return true
	}
	return false
}

// ParseBloodType 校验并返回规范血型；非法输入返回 InvalidBloodType
func ParseBloodType(s string) (BloodType, error) {
	b := BloodType(s)
	if !b.Valid() {
		return "", NewError(ErrInvalidBloodType, "invalid blood group %q", s)
	}
	return b, nil
}

// Compatibility 某一血型的输血相容集合
type Compatibility struct {
	CanDonateTo    []BloodType `json:"can_donate_to"`
	CanReceiveFrom []BloodType `json:"can_receive_from"`
}

// compatibilityMatrix 标准输血相容矩阵。
// 固定查表，不做推导，避免与医学规则产生偏差。
var compatibilityMatrix = map[BloodType]Compatibility{
	APos:  {CanDonateTo: []BloodType{APos, ABPos}, CanReceiveFrom: []BloodType{APos, ANeg, OPos, ONeg}},
	ANeg:  {CanDonateTo: []BloodType{APos, ANeg, ABPos, ABNeg}, CanReceiveFrom: []BloodType{ANeg, ONeg}},
	BPos:  {CanDonateTo: []BloodType{BPos, ABPos}, CanReceiveFrom: []BloodType{BPos, BNeg, OPos, ONeg}},
	BNeg:  {CanDonateTo: []BloodType{BPos, BNeg, ABPos, ABNeg}, CanReceiveFrom: []BloodType{BNeg, ONeg}},
	ABPos: {CanDonateTo: []BloodType{ABPos}, CanReceiveFrom: []BloodType{APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg}},
	ABNeg: {CanDonateTo: []BloodType{ABPos, ABNeg}, CanReceiveFrom: []BloodType{ANeg, BNeg, ABNeg, ONeg}},
	OPos:  {CanDonateTo: []BloodType{APos, BPos, ABPos, OPos}, CanReceiveFrom: []BloodType{OPos, ONeg}},
	ONeg:  {CanDonateTo: []BloodType{APos, ANeg, BPos, BNeg, ABPos, ABNeg, OPos, ONeg}, CanReceiveFrom: []BloodType{ONeg}},
}

// CompatibilityFor 返回血型的供/受相容集合；非法血型返回 InvalidBloodType
func CompatibilityFor(b BloodType) (Compatibility, error) {
	c, ok := compatibilityMatrix[b]
	if !ok {
		return Compatibility{}, NewError(ErrInvalidBloodType, "invalid blood group %q", string(b))
	}
	// Copy the slices so callers cannot mutate the matrix.
	out := Compatibility{
		CanDonateTo:    append([]BloodType(nil), c.CanDonateTo...),
		CanReceiveFrom: append([]BloodType(nil), c.CanReceiveFrom...),
	}
	return out, nil
}

// CompatibleDonorTypes 可以向 recipient 供血的血型集合
// （搜索匹配捐献者时使用：即 recipient 的 CanReceiveFrom）
func CompatibleDonorTypes(recipient BloodType) ([]BloodType, error) {
	c, err := CompatibilityFor(recipient)
	if err != nil {
		return nil, err
	}
	return c.CanReceiveFrom, nil
}
