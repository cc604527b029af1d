package browser

// stealthScript runs before any page script on every new document. It
// rewrites the properties automation probes inspect so the session reports
// human-plausible values: no webdriver flag, a populated plugin list,
// Chilean locale languages, desktop hardware figures, a permissions shim,
// the chrome extension namespace, and Intel GPU strings.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });

Object.defineProperty(navigator, 'plugins', {
  get: () => [
    { name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer' },
    { name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai' },
    { name: 'Native Client', filename: 'internal-nacl-plugin' }
  ]
});

Object.defineProperty(navigator, 'languages', {
  get: () => ['es-CL', 'es', 'en-US', 'en']
});

Object.defineProperty(navigator, 'platform', {
  get: () => 'MacIntel'
});

Object.defineProperty(navigator, 'hardwareConcurrency', {
  get: () => 8
});

Object.defineProperty(navigator, 'deviceMemory', {
  get: () => 8
});

const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => {
  if (parameters.name === 'notifications') {
    return Promise.resolve({ state: Notification.permission });
  }
  return originalQuery(parameters);
};

window.chrome = {
  runtime: {},
  loadTimes: function() {},
  csi: function() {},
  app: {}
};

const getParameter = WebGLRenderingContext.prototype.getParameter;
WebGLRenderingContext.prototype.getParameter = function(parameter) {
  if (parameter === 37445) return 'Intel Inc.';
  if (parameter === 37446) return 'Intel Iris OpenGL Engine';
  return getParameter.apply(this, arguments);
};
`
