package region

import "github.com/pkordes/growth-logbook/backend/internal/domain"

// chinaRegions is the closed set of 34 provincial-level divisions:
// 4 municipalities, 23 provinces (Taiwan included), 5 autonomous regions
// and 2 special administrative regions. Map series are drawn in this order.
var chinaRegions = []domain.Region{
	{FullName: "北京市", DisplayName: "北京", Class: domain.ClassMunicipality},
	{FullName: "天津市", DisplayName: "天津", Class: domain.ClassMunicipality},
	{FullName: "上海市", DisplayName: "上海", Class: domain.ClassMunicipality},
	{FullName: "重庆市", DisplayName: "重庆", Class: domain.ClassMunicipality},

	{FullName: "河北省", DisplayName: "河北", Class: domain.ClassProvince},
	{FullName: "山西省", DisplayName: "山西", Class: domain.ClassProvince},
	{FullName: "辽宁省", DisplayName: "辽宁", Class: domain.ClassProvince},
	{FullName: "吉林省", DisplayName: "吉林", Class: domain.ClassProvince},
	{FullName: "黑龙江省", DisplayName: "黑龙江", Class: domain.ClassProvince},
	{FullName: "江苏省", DisplayName: "江苏", Class: domain.ClassProvince},
	{FullName: "浙江省", DisplayName: "浙江", Class: domain.ClassProvince},
	{FullName: "安徽省", DisplayName: "安徽", Class: domain.ClassProvince},
	{FullName: "福建省", DisplayName: "福建", Class: domain.ClassProvince},
	{FullName: "江西省", DisplayName: "江西", Class: domain.ClassProvince},
	{FullName: "山东省", DisplayName: "山东", Class: domain.ClassProvince},
	{FullName: "河南省", DisplayName: "河南", Class: domain.ClassProvince},
	{FullName: "湖北省", DisplayName: "湖北", Class: domain.ClassProvince},
	{FullName: "湖南省", DisplayName: "湖南", Class: domain.ClassProvince},
	{FullName: "广东省", DisplayName: "广东", Class: domain.ClassProvince},
	{FullName: "海南省", DisplayName: "海南", Class: domain.ClassProvince},
	{FullName: "四川省", DisplayName: "四川", Class: domain.ClassProvince},
	{FullName: "贵州省", DisplayName: "贵州", Class: domain.ClassProvince},
	{FullName: "云南省", DisplayName: "云南", Class: domain.ClassProvince},
	{FullName: "陕西省", DisplayName: "陕西", Class: domain.ClassProvince},
	{FullName: "甘肃省", DisplayName: "甘肃", Class: domain.ClassProvince},
	{FullName: "青海省", DisplayName: "青海", Class: domain.ClassProvince},
	{FullName: "台湾省", DisplayName: "台湾", Class: domain.ClassProvince},

	{FullName: "内蒙古自治区", DisplayName: "内蒙古", Class: domain.ClassAutonomousRegion},
	{FullName: "广西壮族自治区", DisplayName: "广西", Class: domain.ClassAutonomousRegion},
	{FullName: "西藏自治区", DisplayName: "西藏", Class: domain.ClassAutonomousRegion},
	{FullName: "宁夏回族自治区", DisplayName: "宁夏", Class: domain.ClassAutonomousRegion},
	{FullName: "新疆维吾尔自治区", DisplayName: "新疆", Class: domain.ClassAutonomousRegion},

	{FullName: "香港特别行政区", DisplayName: "香港", Class: domain.ClassSAR},
	{FullName: "澳门特别行政区", DisplayName: "澳门", Class: domain.ClassSAR},
}
