package ipapi

// 文档注释：一次查询的完整解码结果
// 背景：除 Query 与两个布尔字段外均为可选字段；每个可选字段的存在性独立由响应文档推导，
// 与请求输入无关；构造完成后不再修改，作为值返回给调用方。
// 约束：Query 取自服务端回显，是实际被解析地址的权威来源，绝不由请求参数合成。
type Result struct {
	Query            string       `json:"query"`
	Country          *NameAndCode `json:"country,omitempty"`
	Region           *NameAndCode `json:"region,omitempty"`
	City             *string      `json:"city,omitempty"`
	Zip              *string      `json:"zip,omitempty"`
	Location         *Coordinates `json:"location,omitempty"`
	Timezone         *string      `json:"timezone,omitempty"`
	ISP              *string      `json:"isp,omitempty"`
	Organization     *string      `json:"organization,omitempty"`
	AutonomousSystem *string      `json:"autonomous_system,omitempty"`
	Reverse          *string      `json:"reverse,omitempty"`
	Mobile           bool         `json:"mobile"`
	Proxy            bool         `json:"proxy"`
}

// NameAndCode：展示名称与短代码的成对字段（国家/地区）
// 约束：两半必须同时存在且非空，否则整对视为不存在
type NameAndCode struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Coordinates：纬度/经度成对字段，单位为十进制度
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
