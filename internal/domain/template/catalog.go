package template

// Standard clause texts extracted from the redacted TN and WA template
// documents.  Party names redacted in the source remain absent here, which is
// why some sentences read as if a word is missing.

var tnClauses = map[Attribute]string{
	AttrMedicaidTimelyFiling: "Provider shall submit Claims to using appropriate and current Coded Service Identifier(s), within one hundred twenty (120) days from the date the Health Services are rendered or may refuse payment. If is the secondary payor, the one hundred twenty (120) day period will not begin until Provider receives notification of primary payor's responsibility",

	AttrMedicareTimelyFiling: "Provider shall submit Claims to using appropriate and current Coded Service Identifier(s), within one hundred twenty (120) days from the date the Health Services are rendered or may refuse payment. If is the secondary payor, the one hundred twenty (120) day period will not begin until Provider receives notification of primary payor's responsibility. 3.1.1 In situations of enrollment in with a retroactive eligibility date, the time frames for filing a claim shall begin on the date that receives notification from of the Medicaid Member's eligibility/enrollment.",

	AttrNoSteerageSOC: "Provider shall be eligible to participate only in those Networks designated on the Provider Networks Attachment",

	AttrMedicaidFeeSchedule: "one hundred percent (100%) of Eligible Charges for Covered Services, or the total reimbursement amount that Provider and have agreed upon as set forth in the Compensation Schedule. The Rate includes applicable Cost Shares, and shall represent payment in full to Provider for Covered Services.",

	AttrMedicareFeeSchedule: "Medicare Advantage Network means Network of Providers that provides MA Covered Services to MA Members. Related Entity(ies) means any entity that is related to by common ownership or control and performs some of management functions under contract or delegation.",
}

var waClauses = map[Attribute]string{
	AttrMedicaidTimelyFiling: "Unless otherwise instructed, or required by Regulatory Requirements, Provider shall submit Claims for Medicaid Claims.",

	AttrMedicareTimelyFiling: "Provider shall submit Claims to Plan, using appropriate and current Coded Service Identifier(s), within three hundred sixty-five (365) days from the date the Health Services are rendered or Plan may refuse payment. If Plan is the secondary payor, the three hundred sixty-five (365) day period will not begin until Provider receives notification of primary payor's responsibility.",

	AttrNoSteerageSOC: "Provider shall be eligible to participate only in those Networks designated on the Provider Networks Attachment of this Agreement",

	AttrMedicaidFeeSchedule: "one hundred percent (100%) of Eligible Charges for Covered Services, or the total reimbursement amount that Provider and have agreed upon as set forth in the Compensation Schedule. The Rate includes applicable Cost Shares, and shall represent payment in full to Provider for Covered Services.",

	AttrMedicareFeeSchedule: "As a participant in Plan's Medicare Advantage Network, Provider will render MA Covered Services to MA Members enrolled in Plan's Medicare Advantage Program in accordance with the terms and conditions of the Agreement.",
}

// builtinCatalog returns every jurisdiction standard clause, preprocessed and
// in a stable order (jurisdiction, then attribute).
func builtinCatalog() []Clause {
	byJurisdiction := map[Jurisdiction]map[Attribute]string{
		JurisdictionTN: tnClauses,
		JurisdictionWA: waClauses,
	}

	var out []Clause
	for _, j := range Jurisdictions() {
		for _, a := range TargetAttributes() {
			raw, ok := byJurisdiction[j][a]
			if !ok {
				continue
			}
			out = append(out, newClause(j, a, raw))
		}
	}
	return out
}
