package patcher

import "regexp"

const arkImportVolcengine = "from volcenginesdkarkruntime import Ark"

const arkImportEither = "try:\n" +
	"    from byteplussdkarkruntime import Ark\n" +
	"except ImportError:\n" +
	"    from volcenginesdkarkruntime import Ark"

var jimengHardcodedKeys = regexp.MustCompile(
	`    visual_service\.set_ak\('[^']+'\)\n    visual_service\.set_sk\('[^']+'\)`)

var seedLLMModel = Edit{
	Old: `model="doubao-seed-1.6-250615",`,
	New: "model=Config.get_model_name(Config.MODEL_SEED_LLM),",
}

// BytePlusPatches returns the edits that let AutoMV talk to BytePlus Ark as
// well as Volcengine. Order matters only for reporting.
func BytePlusPatches() []Patch {
	return []Patch{
		{
			File:   "config.py",
			Marker: "ARK_PROVIDER",
			Edits: []Edit{
				{
					Old: `    music_name = "1"`,
					New: `    music_name = "1"` + "\n" +
						"\n" +
						"    # BytePlus (international) vs Volcengine (China) configuration\n" +
						"    ARK_PROVIDER = os.getenv('ARK_PROVIDER', 'byteplus')\n" +
						"\n" +
						"    @classmethod\n" +
						"    def get_ark_base_url(cls):\n" +
						"        if cls.ARK_PROVIDER == 'byteplus':\n" +
						`            return "https://ark.ap-southeast.bytepluses.com/api/v3"` + "\n" +
						`        return "https://ark.cn-beijing.volces.com/api/v3"` + "\n" +
						"\n" +
						"    @classmethod\n" +
						"    def get_model_name(cls, model_short):\n" +
						"        if cls.ARK_PROVIDER == 'byteplus':\n" +
						"            return model_short\n" +
						`        return f"doubao-{model_short}"` + "\n" +
						"\n" +
						"    MODEL_SEEDREAM = os.getenv('MODEL_SEEDREAM', 'seedream-4-0-250828')\n" +
						"    MODEL_SEEDANCE = os.getenv('MODEL_SEEDANCE', 'seedance-1-0-pro-250528')\n" +
						"    MODEL_SEED_LLM = os.getenv('MODEL_SEED_LLM', 'seed-1.6-250615')\n",
				},
				{
					Old: "        if not cls.DOUBAO_API_KEY:\n" +
						`            raise ValueError("OPENAI_API_KEY not found in .env")`,
					New: "        if not cls.DOUBAO_API_KEY:\n" +
						`            raise ValueError("DOUBAO_API_KEY not found in .env")`,
				},
			},
		},
		{
			File:   "picture_generate/picture.py",
			Marker: "byteplussdkarkruntime",
			Edits: []Edit{
				{Old: arkImportVolcengine, New: arkImportEither},
				{
					Old: "client_doubao = Ark(\n    api_key=Config.DOUBAO_API_KEY\n)",
					New: "client_doubao = Ark(\n    api_key=Config.DOUBAO_API_KEY,\n    base_url=Config.get_ark_base_url(),\n)",
				},
				{
					Old: `model="doubao-seedream-4-0-250828",`,
					New: "model=Config.get_model_name(Config.MODEL_SEEDREAM),",
				},
				seedLLMModel,
			},
		},
		{
			File:   "video_generate/video_generate_pipeline.py",
			Marker: "byteplussdkarkruntime",
			Edits: []Edit{
				{Old: arkImportVolcengine, New: arkImportEither},
				{
					Old: `def __init__(self, api_key: str, base_url: str = "https://ark.cn-beijing.volces.com/api/v3"):` + "\n" +
						"        self.client = Ark(base_url=base_url, api_key=api_key)",
					New: "def __init__(self, api_key: str, base_url: str = None):\n" +
						"        if base_url is None:\n" +
						"            base_url = Config.get_ark_base_url()\n" +
						"        self.client = Ark(base_url=base_url, api_key=api_key)",
				},
				{
					Old: `    model = "doubao-seedance-1-0-pro-250528"`,
					New: "    model = config.get_model_name(config.MODEL_SEEDANCE)",
				},
			},
		},
		{
			File:   "video_generate/call_gemini.py",
			Marker: "get_ark_base_url",
			Edits: []Edit{
				{
					Old: `base_url="https://ark.cn-beijing.volces.com/api/v3"`,
					New: "base_url=Config.get_ark_base_url()",
				},
				seedLLMModel,
			},
		},
		{
			File:   "generate_lip_video/gen_lip_sycn_video_jimeng.py",
			Marker: "config.HUOSHAN_ACCESS_KEY",
			Edits: []Edit{
				{
					Pattern: jimengHardcodedKeys,
					New: "    # Note: Jimeng lip-sync requires Volcengine (China) credentials.\n" +
						"    # This feature is NOT available via BytePlus (international).\n" +
						"    visual_service.set_ak(config.HUOSHAN_ACCESS_KEY)\n" +
						"    visual_service.set_sk(config.HUOSHAN_SECRET_KEY)",
				},
			},
		},
	}
}
